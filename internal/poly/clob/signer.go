package clob

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/shopspring/decimal"
)

const (
	polygonChainID = 137

	ctfExchange     = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
	negRiskExchange = "0xC5d563A36AE78145C45a50134d48A1215220f80a"

	// Collateral and shares both use 6 decimals on the CTF exchange.
	amountDecimals = 6
)

var maxSalt = new(big.Int).Lsh(big.NewInt(1), 128)

// Signer signs CTF exchange orders with a secp256k1 key. The funder address
// is the proxy wallet that holds collateral; it may differ from the key's
// address.
type Signer struct {
	privKey *ecdsa.PrivateKey
	address common.Address
	funder  common.Address
}

func NewSigner(hexKey, funder string) (*Signer, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if clean == "" {
		return nil, errors.New("private key is required")
	}
	key, err := crypto.HexToECDSA(clean)
	if err != nil {
		return nil, err
	}
	addr := crypto.PubkeyToAddress(key.PublicKey)
	funderAddr := addr
	if trimmed := strings.TrimSpace(funder); trimmed != "" {
		if !common.IsHexAddress(trimmed) {
			return nil, errors.New("funder is not a valid address")
		}
		funderAddr = common.HexToAddress(trimmed)
	}
	return &Signer{privKey: key, address: addr, funder: funderAddr}, nil
}

func (s *Signer) Address() common.Address {
	return s.address
}

// SignOrder builds and signs the order wire struct. BUY orders spend
// price*size collateral for size shares; SELL orders the reverse.
func (s *Signer) SignOrder(args OrderArgs) (OrderWire, error) {
	size := decimal.NewFromInt(args.Size)
	notional := args.Price.Mul(size)
	var makerAmount, takerAmount string
	if args.Side == "SELL" {
		makerAmount = scaleAmount(size)
		takerAmount = scaleAmount(notional)
	} else {
		makerAmount = scaleAmount(notional)
		takerAmount = scaleAmount(size)
	}
	salt, err := rand.Int(rand.Reader, maxSalt)
	if err != nil {
		return OrderWire{}, err
	}
	wire := OrderWire{
		Salt:          salt.String(),
		Maker:         s.funder.Hex(),
		Signer:        s.address.Hex(),
		Taker:         common.Address{}.Hex(),
		TokenID:       args.TokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    "0",
		Nonce:         "0",
		FeeRateBps:    "0",
		Side:          args.Side,
		SignatureType: 0,
	}
	digest, err := orderDigest(wire, args.NegRisk)
	if err != nil {
		return OrderWire{}, err
	}
	sig, err := crypto.Sign(digest, s.privKey)
	if err != nil {
		return OrderWire{}, err
	}
	if len(sig) != 65 {
		return OrderWire{}, errors.New("unexpected signature length")
	}
	sig[64] += 27
	wire.Signature = hexutil.Encode(sig)
	return wire, nil
}

func orderDigest(wire OrderWire, negRisk bool) ([]byte, error) {
	verifying := ctfExchange
	if negRisk {
		verifying = negRiskExchange
	}
	sideCode := "0"
	if wire.Side == "SELL" {
		sideCode = "1"
	}
	typedData := apitypes.TypedData{
		Types: apitypes.Types{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			"Order": {
				{Name: "salt", Type: "uint256"},
				{Name: "maker", Type: "address"},
				{Name: "signer", Type: "address"},
				{Name: "taker", Type: "address"},
				{Name: "tokenId", Type: "uint256"},
				{Name: "makerAmount", Type: "uint256"},
				{Name: "takerAmount", Type: "uint256"},
				{Name: "expiration", Type: "uint256"},
				{Name: "nonce", Type: "uint256"},
				{Name: "feeRateBps", Type: "uint256"},
				{Name: "side", Type: "uint8"},
				{Name: "signatureType", Type: "uint8"},
			},
		},
		PrimaryType: "Order",
		Domain: apitypes.TypedDataDomain{
			Name:              "Polymarket CTF Exchange",
			Version:           "1",
			ChainId:           math.NewHexOrDecimal256(polygonChainID),
			VerifyingContract: verifying,
		},
		Message: apitypes.TypedDataMessage{
			"salt":          wire.Salt,
			"maker":         wire.Maker,
			"signer":        wire.Signer,
			"taker":         wire.Taker,
			"tokenId":       wire.TokenID,
			"makerAmount":   wire.MakerAmount,
			"takerAmount":   wire.TakerAmount,
			"expiration":    wire.Expiration,
			"nonce":         wire.Nonce,
			"feeRateBps":    wire.FeeRateBps,
			"side":          sideCode,
			"signatureType": "0",
		},
	}
	domainHash, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return nil, err
	}
	messageHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return nil, err
	}
	return crypto.Keccak256([]byte("\x19\x01"), domainHash, messageHash), nil
}

func scaleAmount(d decimal.Decimal) string {
	return d.Shift(amountDecimals).Round(0).String()
}
