package constants

// File names.
const (
	// CLILogFileName is the name of the global CLI log file.
	// This file is located in ~/.wipecert/logs/wipecert.log
	CLILogFileName = "wipecert.log"

	// GlobalConfigName is the name of the global configuration file.
	// This file is located in the wipecert home directory.
	GlobalConfigName = "config.yaml"

	// ProjectConfigDir is the directory holding project-level configuration.
	ProjectConfigDir = ".wipecert"

	// PrivateKeyFileName is the default PEM private key file name.
	PrivateKeyFileName = "private_key.pem"

	// PublicKeyFileName is the default PEM public key file name.
	PublicKeyFileName = "public_key.pem"

	// CertificateExt is the extension of persisted certificates.
	CertificateExt = ".json"

	// StoreLockFileName guards writes to the certificate directory.
	StoreLockFileName = ".store.lock"
)

// External tools.
const (
	// ToolLsblk enumerates block devices and partitions.
	ToolLsblk = "lsblk"

	// ToolUmount unmounts filesystems.
	ToolUmount = "umount"

	// ToolHdparm issues ATA security commands.
	ToolHdparm = "hdparm"
)
