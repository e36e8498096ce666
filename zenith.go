package zenith_pc_control

// Product identity shared by the settings defaults, the access-point name and
// the manual page.
const (
	DefaultDeviceName = "Zenith-PC-Control"
	SerialNumber      = "ZPC-01"
)

// Version is overridden at build time with -ldflags "-X zenith_pc_control.Version=...".
var Version = "dev"
