package clob

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

const clobAuthMessage = "This message attests that I control the given wallet"

// Credentials are the L2 API credentials derived from the signing key.
type Credentials struct {
	APIKey     string
	Secret     string
	Passphrase string
}

// Valid reports whether all three parts are present.
func (c Credentials) Valid() bool {
	return c.APIKey != "" && c.Secret != "" && c.Passphrase != ""
}

// l2Headers signs timestamp+method+path+body with the URL-safe base64 secret.
// POLY_ADDRESS is the EOA that owns the API key, not the funder.
func l2Headers(creds Credentials, address string, method string, path string, body []byte, now time.Time) (http.Header, error) {
	secretBytes, err := base64.URLEncoding.DecodeString(creds.Secret)
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}

	timestamp := strconv.FormatInt(now.Unix(), 10)

	h := hmac.New(sha256.New, secretBytes)
	h.Write([]byte(timestamp + method + path + string(body)))
	signature := base64.URLEncoding.EncodeToString(h.Sum(nil))

	headers := http.Header{}
	headers.Set("POLY_API_KEY", creds.APIKey)
	headers.Set("POLY_SIGNATURE", signature)
	headers.Set("POLY_TIMESTAMP", timestamp)
	headers.Set("POLY_PASSPHRASE", creds.Passphrase)
	headers.Set("POLY_ADDRESS", address)

	return headers, nil
}

// clobAuthTypedData is the EIP-712 ClobAuth payload signed for L1 requests.
func clobAuthTypedData(address string, timestamp string, nonce int64) apitypes.TypedData {
	return apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": []apitypes.Type{
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
			},
			"ClobAuth": []apitypes.Type{
				{Name: "address", Type: "address"},
				{Name: "timestamp", Type: "string"},
				{Name: "nonce", Type: "uint256"},
				{Name: "message", Type: "string"},
			},
		},
		PrimaryType: "ClobAuth",
		Domain: apitypes.TypedDataDomain{
			Name:    "ClobAuthDomain",
			Version: "1",
			ChainId: math.NewHexOrDecimal256(polygonChainID),
		},
		Message: apitypes.TypedDataMessage{
			"address":   address,
			"timestamp": timestamp,
			"nonce":     strconv.FormatInt(nonce, 10),
			"message":   clobAuthMessage,
		},
	}
}

// l1Headers signs the ClobAuth message with the private key itself.
func l1Headers(signer *Signer, nonce int64, now time.Time) (http.Header, error) {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	typedData := clobAuthTypedData(signer.Address(), timestamp, nonce)

	hash, _, err := apitypes.TypedDataAndHash(typedData)
	if err != nil {
		return nil, fmt.Errorf("hash clob auth: %w", err)
	}

	signature, err := crypto.Sign(hash, signer.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign clob auth: %w", err)
	}
	if signature[crypto.RecoveryIDOffset] < 27 {
		signature[crypto.RecoveryIDOffset] += 27
	}

	headers := http.Header{}
	headers.Set("POLY_ADDRESS", signer.Address())
	headers.Set("POLY_SIGNATURE", hexutil.Encode(signature))
	headers.Set("POLY_TIMESTAMP", timestamp)
	headers.Set("POLY_NONCE", strconv.FormatInt(nonce, 10))

	return headers, nil
}
