package product

type Product struct {
	ProductID      int64  `db:"product_id"`
	ProductCode    string `db:"product_code"`
	ProductName    string `db:"product_name"`
	KeyPrefix      string `db:"key_prefix"`
	MaxActivations int    `db:"max_activations"`
	LatestVersion  string `db:"latest_version"`
	DownloadURL    string `db:"download_url"`
}
