package product

const getProductSQL = `
SELECT
    product_id,
    product_code,
    product_name,
    key_prefix,
    max_activations,
    latest_version,
    download_url
FROM product
WHERE product_id = ?
`

const getProductByCodeSQL = `
SELECT
    product_id,
    product_code,
    product_name,
    key_prefix,
    max_activations,
    latest_version,
    download_url
FROM product
WHERE product_code = ?
`

const getAllProductsSQL = `
SELECT
    product_id,
    product_code,
    product_name,
    key_prefix,
    max_activations,
    latest_version,
    download_url
FROM product
ORDER BY product_code
`

const createProductSQL = `
INSERT INTO product (
    product_code,
    product_name,
    key_prefix,
    max_activations,
    latest_version,
    download_url
) VALUES (?, ?, ?, ?, ?, ?)
`

const updateProductSQL = `
UPDATE product
SET
    product_name = ?,
    key_prefix = ?,
    max_activations = ?,
    latest_version = ?,
    download_url = ?
WHERE product_code = ?
`

const deleteProductSQL = `
DELETE FROM product
WHERE product_code = ?
`
