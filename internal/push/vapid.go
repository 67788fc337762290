package push

import (
	"fmt"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// LoadVAPIDKeys returns the configured key pair, or generates a fresh one when
// either half is missing. Generated keys only live for this process.
func LoadVAPIDKeys(publicKey, privateKey string, log *zap.Logger) (string, string, error) {
	if publicKey != "" && privateKey != "" {
		return publicKey, privateKey, nil
	}

	log.Warn("VAPID keys not configured, generating new keys")
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate VAPID keys: %w", err)
	}
	log.Info("generated VAPID keys for this process; subscriptions will not survive a restart unless VAPID_PUBLIC_KEY and VAPID_PRIVATE_KEY are set (see -gen-vapid)",
		zap.String("public_key", publicKey),
	)
	log.Debug("generated VAPID private key", zap.String("private_key", privateKey))
	return publicKey, privateKey, nil
}
