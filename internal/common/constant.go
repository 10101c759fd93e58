package common

// Move identifiers of the certificate program. The package id is
// deployment specific and comes from configuration.
const (
	CertificateModule   = "certificate_nft"
	MintFunction        = "mint_certificate"
	ApproveFunction     = "approve_certificate"
	CertificateStruct   = "CertificateNFT"
	MetadataKeyAccount  = "account"
	MetadataKeyKeystore = "keystore_path"
)
