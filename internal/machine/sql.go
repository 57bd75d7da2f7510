package machine

const getActivationSQL = `
SELECT license_id, machine_id, created_at, last_activated_at, installed_version
FROM machine_activation
WHERE license_id = ? AND machine_id = ?
`

const getForLicenseSQL = `
SELECT license_id, machine_id, created_at, last_activated_at, installed_version
FROM machine_activation
WHERE license_id = ?
ORDER BY created_at
`

const countForLicenseSQL = `
SELECT COUNT(*)
FROM machine_activation
WHERE license_id = ?
`

const createActivationSQL = `
INSERT INTO machine_activation (license_id, machine_id, created_at, last_activated_at, installed_version)
VALUES (?, ?, ?, ?, ?)
`

const touchActivationSQL = `
UPDATE machine_activation
SET last_activated_at = ?, installed_version = ?
WHERE license_id = ? AND machine_id = ?
`

const deleteActivationSQL = `
DELETE FROM machine_activation
WHERE license_id = ? AND machine_id = ?
`
