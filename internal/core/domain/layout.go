package domain

const (
	// FilesDirName is the blob collection directory under the cache root.
	FilesDirName = "files"

	// CommandsDirName is the command record collection directory under the cache root.
	CommandsDirName = "commands"

	// FileMetaName is the metadata file inside a blob entry directory.
	FileMetaName = "file.json"

	// FilePayloadName is the payload file inside a blob entry directory.
	FilePayloadName = "compressed"

	// CommandFileName is the record file inside a command entry directory.
	CommandFileName = "command.json"

	// ConfigFileName is the default name of the project configuration file.
	ConfigFileName = "memo.yaml"

	// DefaultCacheDirName is the default cache root, relative to the config file.
	DefaultCacheDirName = ".memo"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)
