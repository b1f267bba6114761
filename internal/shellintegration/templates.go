package shellintegration

import "fmt"

// Script renders the shell wrapper function for shell, wrapping binaryName.
// Unlike the teacher's single-purpose `wt cd` shim, the wrapper sets
// WORKTRUNK_DIRECTIVE_FILE to a fresh temp file, runs the real binary, then
// replays whatever directives it appended: `cd <path>` records change the
// wrapper's own working directory, `exec <argv>` records are evaluated in the
// shell as they are read, before the temp file is removed.
func Script(shell Shell, binaryName string) (string, error) {
	switch shell {
	case ShellBash, ShellZsh:
		return fmt.Sprintf(posixWrapper, binaryName, binaryName, binaryName, binaryName), nil
	case ShellFish:
		return fmt.Sprintf(fishWrapper, binaryName, binaryName, binaryName, binaryName, binaryName), nil
	default:
		return "", fmt.Errorf("shell integration not yet supported for %q (supports bash, zsh, fish)", shell)
	}
}

const posixWrapper = `# %s shell wrapper — eval "$(%s config shell init bash)"
%s() {
	local __wt_directives
	__wt_directives="$(mktemp)"
	WORKTRUNK_DIRECTIVE_FILE="$__wt_directives" command %s "$@"
	local __wt_status=$?

	if [ -s "$__wt_directives" ]; then
		while IFS= read -r -d $'\0' __wt_kind && IFS= read -r -d $'\0' __wt_payload; do
			case "$__wt_kind" in
			cd) cd -- "$__wt_payload" ;;
			exec) eval "$__wt_payload" ;;
			esac
		done <"$__wt_directives"
	fi
	rm -f "$__wt_directives"
	return $__wt_status
}
`

const fishWrapper = `# %s shell wrapper — %s config shell init fish | source
function %s --wraps=%s --description 'worktrunk CLI'
	set -l __wt_directives (mktemp)
	WORKTRUNK_DIRECTIVE_FILE=$__wt_directives command %s $argv
	set -l __wt_status $status

	if test -s $__wt_directives
		set -l __wt_records (string split0 < $__wt_directives)
		for i in (seq 1 2 (count $__wt_records))
			set -l kind $__wt_records[$i]
			set -l payload $__wt_records[(math $i + 1)]
			switch $kind
			case cd
				cd $payload
			case exec
				eval $payload
			end
		end
	end
	rm -f $__wt_directives
	return $__wt_status
end
`
