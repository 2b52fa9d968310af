package clob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"
	"time"
)

// Creds are the L2 API credentials derived from the signing key. The secret
// is base64url-encoded as delivered by the exchange.
type Creds struct {
	APIKey     string
	Secret     string
	Passphrase string
}

func (c Creds) Valid() bool {
	return c.APIKey != "" && c.Secret != "" && c.Passphrase != ""
}

// sign produces the HMAC header value over timestamp+method+path+body.
func (c Creds) sign(timestamp, method, path, body string) (string, error) {
	key, err := base64.URLEncoding.DecodeString(c.Secret)
	if err != nil {
		return "", errors.New("api secret is not valid base64")
	}
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(timestamp + method + path + body))
	return base64.URLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func (c Creds) apply(req *http.Request, address, path, body string, now time.Time) error {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	sig, err := c.sign(timestamp, req.Method, path, body)
	if err != nil {
		return err
	}
	req.Header.Set("POLY_ADDRESS", address)
	req.Header.Set("POLY_SIGNATURE", sig)
	req.Header.Set("POLY_TIMESTAMP", timestamp)
	req.Header.Set("POLY_API_KEY", c.APIKey)
	req.Header.Set("POLY_PASSPHRASE", c.Passphrase)
	return nil
}
