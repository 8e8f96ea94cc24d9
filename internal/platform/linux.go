package platform

// Check IDs, as accepted by --checks.
const (
	SystemdID        = "systemd"
	CronID           = "cron"
	ShellInitID      = "shell_init"
	XDGAutostartID   = "xdg_autostart"
	RuntimeProcessID = "runtime_process"
)

// LinuxCheckIDs returns the Linux check IDs in execution order.
func LinuxCheckIDs() []string {
	return []string{
		SystemdID,
		CronID,
		ShellInitID,
		XDGAutostartID,
		RuntimeProcessID,
	}
}
