// keys.go - recipient key material shared by the queue lifecycle subcommands.
package main

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"

	smpcrypto "github.com/simplex-chat/smp-go/crypto"
)

// encodeRecipientKey returns the base64 PKCS#1 DER encoding of priv, the
// form new-queue prints and the other queue subcommands accept back via
// --recipient-key so a single CLI invocation doesn't have to hold state
// across the queue's lifetime.
func encodeRecipientKey(priv *rsa.PrivateKey) string {
	return base64.StdEncoding.EncodeToString(x509.MarshalPKCS1PrivateKey(priv))
}

// loadRecipientKey decodes --recipient-key back into a guarded signing key.
func loadRecipientKey(b64 string) (*smpcrypto.GuardedKey, error) {
	der, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("smpcli: decode --recipient-key: %w", err)
	}
	priv, err := x509.ParsePKCS1PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("smpcli: parse --recipient-key: %w", err)
	}
	return smpcrypto.NewGuardedKey(priv)
}
