package device

import "github.com/mrz1836/wipecert/internal/constants"

// Tools names the external utilities. Empty fields fall back to the
// bare command name resolved through PATH.
type Tools struct {
	Lsblk  string
	Umount string
	Hdparm string
}

func (t Tools) lsblk() string {
	return orDefault(t.Lsblk, constants.ToolLsblk)
}

func (t Tools) umount() string {
	return orDefault(t.Umount, constants.ToolUmount)
}

func (t Tools) hdparm() string {
	return orDefault(t.Hdparm, constants.ToolHdparm)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
