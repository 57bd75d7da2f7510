package license

const getLicenseByKeySQL = `
SELECT
    license_id,
    product_id,
    license_key,
    user_ref,
    status,
    version,
    is_early_access,
    activations
FROM license
WHERE license_key = ?
`

const getLicenseByIDSQL = `
SELECT
    license_id,
    product_id,
    license_key,
    user_ref,
    status,
    version,
    is_early_access,
    activations
FROM license
WHERE license_id = ?
`

const getLicensesForProductSQL = `
SELECT
    license_id,
    product_id,
    license_key,
    user_ref,
    status,
    version,
    is_early_access,
    activations
FROM license
WHERE product_id = ?
ORDER BY license_key
`

const createLicenseSQL = `
INSERT INTO license (
    license_id,
    product_id,
    license_key,
    user_ref,
    status,
    version,
    is_early_access,
    activations
) VALUES (?, ?, ?, ?, ?, ?, ?, 0)
`

const updateStatusSQL = `
UPDATE license
SET status = ?
WHERE license_id = ?
`

const updateVersionSQL = `
UPDATE license
SET version = ?
WHERE license_id = ?
`

// incrementActivationsSQL is the conditional seat claim. The WHERE clause
// makes the limit check and the increment a single atomic statement: zero
// rows affected means the cap was already reached.
const incrementActivationsSQL = `
UPDATE license
SET activations = activations + 1
WHERE license_id = ? AND activations < ?
`

const decrementActivationsSQL = `
UPDATE license
SET activations = activations - 1
WHERE license_id = ? AND activations > 0
`
