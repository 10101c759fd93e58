// Package wallet holds the signing side of the client: the Signer contract,
// the Session threaded through every write command, an ed25519 KeySigner
// that builds and submits Sui transactions, the PermissionGate that asks the
// user before anything is signed, and the encrypted on-disk keystore.
package wallet
