package clob

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/mselser95/polymarket-mirror/pkg/numeric"
	"github.com/mselser95/polymarket-mirror/pkg/types"
	"github.com/polymarket/go-order-utils/pkg/builder"
	"github.com/polymarket/go-order-utils/pkg/model"
)

const (
	polygonChainID = 137
	zeroAddress    = "0x0000000000000000000000000000000000000000"
)

// Signer builds EIP-712 signed exchange orders.
type Signer struct {
	privateKey    *ecdsa.PrivateKey
	address       string // EOA (signer)
	funder        string // proxy wallet (maker)
	signatureType model.SignatureType
	orderBuilder  builder.ExchangeOrderBuilder
}

// NewSigner parses the hex private key. An empty funder makes the EOA the maker.
func NewSigner(privateKeyHex string, funder string, signatureType int) (*Signer, error) {
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKeyHex), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return newSignerFromKey(privateKey, funder, signatureType), nil
}

func newSignerFromKey(privateKey *ecdsa.PrivateKey, funder string, signatureType int) *Signer {
	address := crypto.PubkeyToAddress(privateKey.PublicKey).Hex()
	if funder == "" {
		funder = address
	}

	return &Signer{
		privateKey:    privateKey,
		address:       address,
		funder:        funder,
		signatureType: model.SignatureType(signatureType),
		orderBuilder:  builder.NewExchangeOrderBuilderImpl(big.NewInt(polygonChainID), nil),
	}
}

// Address returns the EOA that signs orders.
func (s *Signer) Address() string {
	return s.address
}

// Sign builds and signs the order for req. BUY orders give USDC and take shares, SELL orders
// give shares and take USDC.
func (s *Signer) Sign(req types.OrderRequest) (*model.SignedOrder, error) {
	if req.Shares <= 0 || req.Price <= 0 {
		return nil, fmt.Errorf("invalid order amounts: shares=%f price=%f", req.Shares, req.Price)
	}

	sharesRaw := numeric.ToRawAmount(req.Shares)
	notionalRaw := numeric.ToRawAmount(numeric.Notional(req.Shares, req.Price))

	data := &model.OrderData{
		Maker:         s.funder,
		Taker:         zeroAddress,
		TokenId:       req.TokenID,
		FeeRateBps:    strconv.FormatFloat(req.FeeBps, 'f', 0, 64),
		Nonce:         "0",
		Signer:        s.address,
		Expiration:    "0",
		SignatureType: s.signatureType,
	}

	switch req.Side {
	case types.SideBuy:
		data.Side = model.BUY
		data.MakerAmount = notionalRaw
		data.TakerAmount = sharesRaw
	case types.SideSell:
		data.Side = model.SELL
		data.MakerAmount = sharesRaw
		data.TakerAmount = notionalRaw
	default:
		return nil, fmt.Errorf("unknown side %q", req.Side)
	}

	contract := model.CTFExchange
	if req.NegRisk {
		contract = model.NegRiskCTFExchange
	}

	order, err := s.orderBuilder.BuildSignedOrder(s.privateKey, data, contract)
	if err != nil {
		return nil, fmt.Errorf("build signed order: %w", err)
	}

	return order, nil
}
