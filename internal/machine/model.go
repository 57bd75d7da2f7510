package machine

// Activation is one durable binding of a machine fingerprint to a license.
// At most one row exists per (license, machine) pair; rows are inserted by a
// successful activation and removed only by the admin API.
type Activation struct {
	LicenseID        string `db:"license_id"`
	MachineID        string `db:"machine_id"`
	CreatedAt        string `db:"created_at"`
	LastActivatedAt  string `db:"last_activated_at"`
	InstalledVersion string `db:"installed_version"`
}
