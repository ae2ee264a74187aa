package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/nftwatch/sales-indexer/internal/adapter"
	"github.com/nftwatch/sales-indexer/internal/block"
	"github.com/nftwatch/sales-indexer/internal/domain"
)

// Marketplace event signatures observed in the receipts of sale transactions
var (
	// Seaport 1.x: OrderFulfilled(bytes32,address,address,address,(uint8,address,uint256,uint256)[],(uint8,address,uint256,uint256,address)[])
	seaportOrderFulfilledSignature = crypto.Keccak256Hash([]byte("OrderFulfilled(bytes32,address,address,address,(uint8,address,uint256,uint256)[],(uint8,address,uint256,uint256,address)[])"))

	// Wyvern exchange (legacy OpenSea): OrdersMatched(bytes32,bytes32,address,address,uint256,bytes32)
	wyvernOrdersMatchedSignature = crypto.Keccak256Hash([]byte("OrdersMatched(bytes32,bytes32,address,address,uint256,bytes32)"))

	// LooksRare exchange
	looksRareTakerAskSignature = crypto.Keccak256Hash([]byte("TakerAsk(bytes32,uint256,address,address,address,address,address,uint256,uint256,uint256)"))
	looksRareTakerBidSignature = crypto.Keccak256Hash([]byte("TakerBid(bytes32,uint256,address,address,address,address,address,uint256,uint256,uint256)"))

	// Blur exchange: OrdersMatched(address,address,(address,uint8,address,address,uint256,uint256,address,uint256,uint256,uint256,(uint16,address)[],uint256,bytes32),bytes32,(address,uint8,address,address,uint256,uint256,address,uint256,uint256,uint256,(uint16,address)[],uint256,bytes32),bytes32)
	blurOrdersMatchedSignature = crypto.Keccak256Hash([]byte("OrdersMatched(address,address,(address,uint8,address,address,uint256,uint256,address,uint256,uint256,uint256,(uint16,address)[],uint256,bytes32),bytes32,(address,uint8,address,address,uint256,uint256,address,uint256,uint256,uint256,(uint16,address)[],uint256,bytes32),bytes32)"))

	// X2Y2 exchange
	x2y2InventorySignature = crypto.Keccak256Hash([]byte("EvInventory(bytes32,address,address,uint256,uint256,uint256,uint256,uint256,address,bytes,(uint256,uint256)[],(uint8,uint256,uint256,address,bytes4,uint256,(address,uint256)[],bytes))"))
)

// Known marketplace router addresses used when no marketplace event is present
// in the receipt, keyed by lowercase hex address
var marketplaceRouters = map[string]domain.Platform{
	"0x0fc584529a2aefa997697fafacba5831fac0c22d": domain.PlatformNFTX,
	"0x6d7c44773c52d396f43c2d511b81aa168e9a7a42": domain.PlatformCargo,
	"0x9757f2d2b135150bbeb65308d4a91804107cd8d6": domain.PlatformRarible,
	"0xbaba5d17a9cf69a3ea7ef383ab0cbea143d90e36": domain.PlatformNotLarvaLabs,
}

var weiPerEther = new(big.Float).SetFloat64(1e18)

// seaportDataArguments decodes the non-indexed payload of OrderFulfilled:
// orderHash, recipient, offer SpentItem[], consideration ReceivedItem[]
var seaportDataArguments = buildSeaportArguments()

func buildSeaportArguments() abi.Arguments {
	bytes32Type, err := abi.NewType("bytes32", "", nil)
	if err != nil {
		panic(err)
	}
	addressType, err := abi.NewType("address", "", nil)
	if err != nil {
		panic(err)
	}
	offerType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "itemType", Type: "uint8"},
		{Name: "token", Type: "address"},
		{Name: "identifier", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
	})
	if err != nil {
		panic(err)
	}
	considerationType, err := abi.NewType("tuple[]", "", []abi.ArgumentMarshaling{
		{Name: "itemType", Type: "uint8"},
		{Name: "token", Type: "address"},
		{Name: "identifier", Type: "uint256"},
		{Name: "amount", Type: "uint256"},
		{Name: "recipient", Type: "address"},
	})
	if err != nil {
		panic(err)
	}

	return abi.Arguments{
		{Name: "orderHash", Type: bytes32Type},
		{Name: "recipient", Type: addressType},
		{Name: "offer", Type: offerType},
		{Name: "consideration", Type: considerationType},
	}
}

// SalesResolver resolves a raw Transfer log into a priced, platform-tagged
// sale event by inspecting the enclosing transaction and its receipt.
type SalesResolver struct {
	client adapter.EthClient
	blocks block.BlockProvider
}

// NewSalesResolver creates a resolver backed by the given RPC client and
// block provider
func NewSalesResolver(client adapter.EthClient, blocks block.BlockProvider) *SalesResolver {
	return &SalesResolver{
		client: client,
		blocks: blocks,
	}
}

// Resolve converts one Transfer log into a normalized sale event. The native
// transaction value is always captured as the ether price; the alternate
// value and platform tag come from marketplace events found in the receipt.
func (r *SalesResolver) Resolve(ctx context.Context, eventLog types.Log) (*domain.SaleEvent, error) {
	if len(eventLog.Topics) != 4 {
		return nil, fmt.Errorf("unexpected topic count %d for log %s:%d", len(eventLog.Topics), eventLog.TxHash.Hex(), eventLog.Index)
	}
	if eventLog.Topics[0] != transferEventSignature {
		return nil, fmt.Errorf("unexpected event signature %s for log %s:%d", eventLog.Topics[0].Hex(), eventLog.TxHash.Hex(), eventLog.Index)
	}

	fromWallet := common.BytesToAddress(eventLog.Topics[1].Bytes())
	toWallet := common.BytesToAddress(eventLog.Topics[2].Bytes())
	tokenID := eventLog.Topics[3].Big()
	if !tokenID.IsInt64() {
		return nil, fmt.Errorf("token id out of range for log %s:%d", eventLog.TxHash.Hex(), eventLog.Index)
	}

	txDate, err := r.blocks.GetBlockTimestamp(ctx, eventLog.BlockNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve block timestamp: %w", err)
	}

	tx, receipt, err := r.fetchTransaction(ctx, eventLog.TxHash)
	if err != nil {
		return nil, err
	}

	event := &domain.SaleEvent{
		EventType:  domain.EventTypeTransfer,
		FromWallet: strings.ToLower(fromWallet.Hex()),
		ToWallet:   strings.ToLower(toWallet.Hex()),
		TokenID:    tokenID.Int64(),
		Ether:      weiToEther(tx.Value()),
		TxDate:     txDate,
		TxHash:     strings.ToLower(eventLog.TxHash.Hex()),
		LogIndex:   eventLog.Index,
		Platform:   domain.PlatformUnknown,
	}

	r.tagSale(event, tx, receipt)

	return event, nil
}

// fetchTransaction retrieves the transaction and its receipt with exponential
// backoff, since receipts for freshly mined blocks can lag behind the logs
func (r *SalesResolver) fetchTransaction(ctx context.Context, txHash common.Hash) (*types.Transaction, *types.Receipt, error) {
	var tx *types.Transaction
	var receipt *types.Receipt

	operation := func() error {
		var err error
		tx, _, err = r.client.TransactionByHash(ctx, txHash)
		if err != nil {
			return fmt.Errorf("failed to fetch transaction %s: %w", txHash.Hex(), err)
		}

		receipt, err = r.client.TransactionReceipt(ctx, txHash)
		if err != nil {
			return fmt.Errorf("failed to fetch receipt %s: %w", txHash.Hex(), err)
		}
		return nil
	}

	// Configure exponential backoff
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, nil, err
	}

	return tx, receipt, nil
}

// tagSale inspects the receipt for marketplace events and, when one is found,
// marks the event as a sale with the platform tag and the decoded price
func (r *SalesResolver) tagSale(event *domain.SaleEvent, tx *types.Transaction, receipt *types.Receipt) {
	for _, receiptLog := range receipt.Logs {
		if receiptLog == nil || len(receiptLog.Topics) == 0 {
			continue
		}

		switch receiptLog.Topics[0] {
		case seaportOrderFulfilledSignature:
			event.EventType = domain.EventTypeSale
			event.Platform = domain.PlatformOpenSea
			if price, ok := decodeSeaportPrice(receiptLog.Data); ok {
				event.AlternateValue = price
			}
			return
		case wyvernOrdersMatchedSignature:
			event.EventType = domain.EventTypeSale
			event.Platform = domain.PlatformOpenSea
			if price, ok := decodeTrailingWordPrice(receiptLog.Data); ok {
				event.AlternateValue = price
			}
			return
		case looksRareTakerAskSignature, looksRareTakerBidSignature:
			event.EventType = domain.EventTypeSale
			event.Platform = domain.PlatformLooksRare
			if price, ok := decodeTrailingWordPrice(receiptLog.Data); ok {
				event.AlternateValue = price
			}
			return
		case blurOrdersMatchedSignature:
			event.EventType = domain.EventTypeSale
			event.Platform = domain.PlatformBlur
			return
		case x2y2InventorySignature:
			event.EventType = domain.EventTypeSale
			event.Platform = domain.PlatformX2Y2
			return
		}
	}

	// No marketplace event in the receipt. A direct payment to a known
	// router, or any non-zero transaction value, is still treated as a sale.
	if to := tx.To(); to != nil {
		if platform, ok := marketplaceRouters[strings.ToLower(to.Hex())]; ok {
			event.EventType = domain.EventTypeSale
			event.Platform = platform
			return
		}
	}
	if tx.Value().Sign() > 0 {
		event.EventType = domain.EventTypeSale
	}
}

// decodeSeaportPrice sums the native-currency consideration items of an
// OrderFulfilled payload
func decodeSeaportPrice(data []byte) (float64, bool) {
	values, err := seaportDataArguments.Unpack(data)
	if err != nil || len(values) != 4 {
		return 0, false
	}

	consideration, ok := values[3].([]struct {
		ItemType   uint8          `json:"itemType"`
		Token      common.Address `json:"token"`
		Identifier *big.Int       `json:"identifier"`
		Amount     *big.Int       `json:"amount"`
		Recipient  common.Address `json:"recipient"`
	})
	if !ok {
		return 0, false
	}

	total := new(big.Int)
	for _, item := range consideration {
		// item type 0 is the native currency
		if item.ItemType == 0 && item.Amount != nil {
			total.Add(total, item.Amount)
		}
	}
	if total.Sign() == 0 {
		return 0, false
	}
	return weiToEther(total), true
}

// decodeTrailingWordPrice reads the final 32-byte word of a payload as a wei
// amount, which is where Wyvern and LooksRare place the matched price
func decodeTrailingWordPrice(data []byte) (float64, bool) {
	if len(data) < 32 || len(data)%32 != 0 {
		return 0, false
	}
	price := new(big.Int).SetBytes(data[len(data)-32:])
	if price.Sign() == 0 {
		return 0, false
	}
	return weiToEther(price), true
}

// weiToEther converts a wei amount to a float ether value
func weiToEther(wei *big.Int) float64 {
	if wei == nil {
		return 0
	}
	value, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), weiPerEther).Float64()
	return value
}
