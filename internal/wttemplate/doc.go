// Package wttemplate implements the Templater: a Jinja-subset expander for
// hook and LLM-bridge command templates.
//
// Supported syntax: variables (`{{ x }}`), filters (`{{ x | filter }}`),
// and conditionals (`{% if x %}…{% endif %}`). Every substituted variable
// is wrapped in POSIX single quotes with embedded quotes escaped as
// `'\''`, unless the `raw` filter is used, so templates can safely embed
// branch names, paths or URLs in a shell command string.
//
// There is no Jinja implementation anywhere in the example pack this was
// grounded on, so this package translates the Jinja-subset surface syntax
// into Go's standard text/template (proven pipeline and FuncMap
// machinery) rather than hand-rolling a second templating engine from
// scratch — the one intentionally stdlib-reliant piece of this module.
package wttemplate
