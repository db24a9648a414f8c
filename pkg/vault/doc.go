// Package vault stores the Dexcom Share password encrypted at rest.
//
// The password is never written in clear. A key is stretched from the user's
// master passphrase with PBKDF2-HMAC-SHA256 and a fresh random salt, and the
// password is sealed with XChaCha20-Poly1305. The resulting token is
// authenticated: a wrong passphrase or a modified file fails with
// ErrDecryption instead of yielding a different plaintext.
//
// # File Format
//
// The credential file is a single JSON document:
//
//	{
//	  "version": 1,
//	  "region": "us",
//	  "username": "someone@example.com",
//	  "encrypted_password": {
//	    "salt_b64": "<base64 16-byte salt>",
//	    "pw_token": "<base64url token>"
//	  }
//	}
//
// The token is base64url(version || nonce || ciphertext). Save restricts the
// file to owner read/write where the platform supports POSIX permissions.
package vault
