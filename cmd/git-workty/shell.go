package main

import (
	"fmt"
	"strings"
)

var supportedShells = []string{"bash", "zsh", "fish", "powershell"}

// generateInit returns the shell integration script: the wcd, wnew and
// wgo helpers unless noCD, and a git wrapper that changes directory after
// `git workty go|pick|new` when wrapGit.
func generateInit(shell string, wrapGit bool, noCD bool) (string, error) {
	var b strings.Builder
	switch strings.ToLower(strings.TrimSpace(shell)) {
	case "bash":
		b.WriteString("# git-workty shell integration for bash\n\n")
		if !noCD {
			b.WriteString(posixHelpers)
		}
		if wrapGit {
			b.WriteString(posixGitWrapper)
		}
	case "zsh":
		b.WriteString("# git-workty shell integration for zsh\n\n")
		if !noCD {
			b.WriteString(zshify(posixHelpers))
		}
		if wrapGit {
			b.WriteString(zshify(posixGitWrapper))
		}
	case "fish":
		b.WriteString("# git-workty shell integration for fish\n\n")
		if !noCD {
			b.WriteString(fishHelpers)
		}
		if wrapGit {
			b.WriteString(fishGitWrapper)
		}
	case "powershell", "pwsh":
		b.WriteString("# git-workty shell integration for PowerShell\n\n")
		if !noCD {
			b.WriteString(powershellHelpers)
		}
		if wrapGit {
			b.WriteString("# The git wrapper is not available for PowerShell; use wcd, wnew and wgo.\n\n")
		}
	default:
		return "", fmt.Errorf("unsupported shell %q (supported: %s)", shell, strings.Join(supportedShells, ", "))
	}
	return b.String(), nil
}

// zshify switches the bash test syntax to zsh's [[ ]].
func zshify(script string) string {
	return strings.NewReplacer(
		"if [ ", "if [[ ",
		" ] && [ ", " ]] && [[ ",
		" ]; then", " ]]; then",
		`"$1" = "workty"`, `"$1" == "workty"`,
	).Replace(script)
}

const posixHelpers = `# wcd - pick a worktree and cd into it
wcd() {
    local dir
    dir="$(git workty pick 2>/dev/null)"
    if [ -n "$dir" ] && [ -d "$dir" ]; then
        cd "$dir" || return 1
    fi
}

# wnew - create a worktree and cd into it
wnew() {
    if [ -z "$1" ]; then
        echo "Usage: wnew <branch-name>" >&2
        return 1
    fi
    local dir
    dir="$(git workty new "$@" --print-path)"
    if [ -n "$dir" ] && [ -d "$dir" ]; then
        cd "$dir" || return 1
    fi
}

# wgo - cd into a worktree by name
wgo() {
    if [ -z "$1" ]; then
        echo "Usage: wgo <worktree-name>" >&2
        return 1
    fi
    local dir
    dir="$(git workty go "$1" 2>/dev/null)"
    if [ -n "$dir" ] && [ -d "$dir" ]; then
        cd "$dir" || return 1
    else
        echo "Worktree not found: $1" >&2
        return 1
    fi
}

`

const posixGitWrapper = `# git wrapper that changes directory for workty go, pick and new
git() {
    if [ "$1" = "workty" ]; then
        local dir
        case "$2" in
            go)
                dir="$(command git workty go "${@:3}" 2>/dev/null)"
                ;;
            pick)
                dir="$(command git workty pick 2>/dev/null)"
                ;;
            new)
                dir="$(command git workty new "${@:3}" --print-path)"
                ;;
            *)
                command git "$@"
                return
                ;;
        esac
        if [ -n "$dir" ] && [ -d "$dir" ]; then
            cd "$dir" || return 1
        else
            command git "$@"
        fi
    else
        command git "$@"
    fi
}

`

const fishHelpers = `# wcd - pick a worktree and cd into it
function wcd
    set -l dir (git workty pick 2>/dev/null)
    if test -n "$dir" -a -d "$dir"
        cd "$dir"
    end
end

# wnew - create a worktree and cd into it
function wnew
    if test (count $argv) -eq 0
        echo "Usage: wnew <branch-name>" >&2
        return 1
    end
    set -l dir (git workty new $argv --print-path)
    if test -n "$dir" -a -d "$dir"
        cd "$dir"
    end
end

# wgo - cd into a worktree by name
function wgo
    if test (count $argv) -eq 0
        echo "Usage: wgo <worktree-name>" >&2
        return 1
    end
    set -l dir (git workty go $argv[1] 2>/dev/null)
    if test -n "$dir" -a -d "$dir"
        cd "$dir"
    else
        echo "Worktree not found: $argv[1]" >&2
        return 1
    end
end

`

const fishGitWrapper = `# git wrapper that changes directory for workty go, pick and new
function git --wraps git
    if test "$argv[1]" = "workty"
        set -l dir
        switch $argv[2]
            case go
                set dir (command git workty go $argv[3..] 2>/dev/null)
            case pick
                set dir (command git workty pick 2>/dev/null)
            case new
                set dir (command git workty new $argv[3..] --print-path)
            case '*'
                command git $argv
                return
        end
        if test -n "$dir" -a -d "$dir"
            cd "$dir"
        else
            command git $argv
        end
    else
        command git $argv
    end
end

`

const powershellHelpers = `# wcd - pick a worktree and cd into it
function wcd {
    $dir = git workty pick 2>$null
    if ($dir -and (Test-Path $dir)) {
        Set-Location $dir
    }
}

# wnew - create a worktree and cd into it
function wnew {
    param([Parameter(Mandatory=$true)][string]$Name)
    $dir = git workty new $Name --print-path
    if ($dir -and (Test-Path $dir)) {
        Set-Location $dir
    }
}

# wgo - cd into a worktree by name
function wgo {
    param([Parameter(Mandatory=$true)][string]$Name)
    $dir = git workty go $Name 2>$null
    if ($dir -and (Test-Path $dir)) {
        Set-Location $dir
    } else {
        Write-Error "Worktree not found: $Name"
    }
}

`
