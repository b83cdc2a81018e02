package modlink

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort         = "Link game mods into place from a load order"
	MsgListShort         = "List mods, plugins and downloads"
	MsgActivateShort     = "Activate mods or plugins"
	MsgDeactivateShort   = "Deactivate mods or plugins"
	MsgMoveShort         = "Move a mod or plugin in the load order"
	MsgTagShort          = "Add tags to a mod"
	MsgUntagShort        = "Remove tags from a mod"
	MsgDiscardShort      = "Drop uncommitted load order changes"
	MsgCommitShort       = "Link the active mods into the game directory"
	MsgCollisionsShort   = "Show which mods overwrite each other's files"
	MsgCleanShort        = "Remove every managed link from the game directory"
	MsgInstallShort      = "Install a download as a new mod"
	MsgConfigureShort    = "Run the installer of a mod"
	MsgDownloadsShort    = "List downloads and duplicate archives"
	MsgRenameShort       = "Rename a mod or a download"
	MsgDeleteShort       = "Delete mods or a download"
	MsgGamesShort        = "List configured games"
	MsgConfigShort       = "Show the effective configuration"
	MsgLogShort          = "Print the path of the log file"
	MsgVersionShort      = "Print version information"
	MsgCompletionShort   = "Generate shell completion script"
	MsgTagLong           = "Tag attaches labels to a mod. list matches tags exactly, so tags group mods for bulk activation."
	MsgDiscardLong       = "Discard forgets the changes made since the last commit and restores the committed load order."
	MsgCollisionsLong    = "Collisions lists every file a mod shares with other active mods, in load order, with the mod that wins it. Active mods that lose all of their files are reported as obsolete."
	MsgCleanLong         = "Clean removes every link modlink created in the game directory and leaves the load order alone. The next commit puts them back."
	MsgDownloadsLong     = "Downloads lists the archives in the downloads directory. Archives with identical content are flagged."
	MsgRenameLong        = "Rename gives a mod or a download a new name. An active mod is unlinked, renamed and linked again."
	MsgDeleteLong        = "Delete removes mods by index, or a download by name. Active mods are unlinked first."
	MsgGamesLong         = "Games lists the games from the configuration file and marks the default one."
	MsgConfigLong        = "Config prints the configuration after merging the built-in defaults, the configuration file and the environment."
	MsgLogLong           = "Log prints where modlink writes its log file."
	MsgCompletionLong    = "Generate a completion script for bash, zsh, fish or powershell."
	MsgInstallExample    = "  modlink install SkyUI_5_2_SE.zip\n  modlink install 0 --select \"Textures=2K\""
	MsgDeleteExample     = "  modlink delete mod 3 4\n  modlink delete download SkyUI_5_2_SE.zip --yes"
	MsgRenameExample     = "  modlink rename mod 3 \"Better UI\"\n  modlink rename download old.zip new.zip"
	MsgCollisionsExample = "  modlink collisions \"Cool Textures\"\n  modlink collisions 3"
	MsgCompletionExample = "  source <(modlink completion bash)"
	MsgConfigExample     = "  modlink config\n  modlink config --defaults > ~/.config/modlink/config.toml"

	// Flag descriptions
	MsgFlagVerbose  = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagGame     = "Game to manage (defaults to default_game)"
	MsgFlagFormat   = "Output format: auto, term, text, json or yaml"
	MsgFlagFilter   = "Restrict \"all\" to entries matching these keywords"
	MsgFlagSelect   = "Installer answer as [page/][group=][!]option, repeatable"
	MsgFlagYes      = "Do not ask for confirmation"
	MsgFlagDefaults = "Print the built-in default configuration"
	MsgFlagSet      = "Override a configuration key for this run, as key=value"

	// Status messages
	MsgActivated       = "%d %s(s) activated, commit to apply"
	MsgDeactivated     = "%d %s(s) deactivated, commit to apply"
	MsgMoved           = "%s moved from %d to %d, commit to apply"
	MsgTagged          = "%s tags: %s"
	MsgDiscarded       = "Uncommitted changes discarded"
	MsgNothingPending  = "Nothing to discard"
	MsgCleaned         = "%d links removed"
	MsgRenamed         = "%s renamed to %s"
	MsgDeletedMods     = "%d mod(s) deleted"
	MsgDeletedDownload = "%s deleted"
	MsgConfigured      = "%s configured, activate it to use it"
	MsgStaleEntries    = "%d manifest entries no longer match a mod and were dropped"
	MsgNoChoices       = "(no choices)"

	// Prompts
	MsgConfirmConfigure = "%s ships an installer. Configure it now?"
	MsgConfirmDelete    = "Delete %s?"

	// Error messages
	MsgErrNoCommand     = "no command specified"
	MsgErrNeedsConfirm  = "refusing to delete without confirmation, pass --yes"
	MsgErrDeleteAborted = "delete aborted"
	MsgErrCommitFailed  = "%d file(s) could not be linked"
	MsgErrNeedsSelect   = "not on a terminal, answer the installer with --select"
	MsgErrOneDownload   = "delete download takes one name"
)

// Long messages and templates, embedded from msgs/
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/list-long.txt
	msgListLongRaw string
	MsgListLong    = strings.TrimSpace(msgListLongRaw)

	//go:embed msgs/list-example.txt
	msgListExampleRaw string
	MsgListExample    = strings.TrimRight(msgListExampleRaw, "\n")

	//go:embed msgs/activate-long.txt
	msgActivateLongRaw string
	MsgActivateLong    = strings.TrimSpace(msgActivateLongRaw)

	//go:embed msgs/activate-example.txt
	msgActivateExampleRaw string
	MsgActivateExample    = strings.TrimRight(msgActivateExampleRaw, "\n")

	//go:embed msgs/move-long.txt
	msgMoveLongRaw string
	MsgMoveLong    = strings.TrimSpace(msgMoveLongRaw)

	//go:embed msgs/commit-long.txt
	msgCommitLongRaw string
	MsgCommitLong    = strings.TrimSpace(msgCommitLongRaw)

	//go:embed msgs/install-long.txt
	msgInstallLongRaw string
	MsgInstallLong    = strings.TrimSpace(msgInstallLongRaw)

	//go:embed msgs/configure-long.txt
	msgConfigureLongRaw string
	MsgConfigureLong    = strings.TrimSpace(msgConfigureLongRaw)

	//go:embed msgs/configure-example.txt
	msgConfigureExampleRaw string
	MsgConfigureExample    = strings.TrimRight(msgConfigureExampleRaw, "\n")

	//go:embed msgs/usage-template.txt
	MsgUsageTemplate string
)
