package dashboard

import (
	"fmt"
	"strings"
)

// Messages is the localized text catalog used for view states and chart titles.
type Messages struct {
	NoData             string
	TimeBasedError     string
	BuyersSellersError string
	MarketplaceError   string
	ResaleError        string
	TokenError         string
	OwnedError         string
	InvalidTokenID     string
	InvalidAddress     string
	NoOwnedTokens      string

	TopBuyers         string
	TopSellers        string
	BuyerAddress      string
	SellerAddress     string
	TotalVolume       string
	VolumeComparison  string
	TradeComparison   string
	VolumeUSD         string
	TradeCount        string
	TokenHistoryTitle string // formatted with the token id
	SoldDate          string
	PriceUSD          string

	// Field labels for text renderers.
	AveragePrice      string
	HighestPrice      string
	HighestPriceToken string
	RarityRank        string
	TotalProfit       string
	AverageProfit     string
	ResaleCount       string
	Seller            string
	Loading           string
}

var catalogs = map[string]Messages{
	"zh-TW": {
		NoData:             "沒有資料",
		TimeBasedError:     "無法讀取時間維度資料，請稍後再試。",
		BuyersSellersError: "無法顯示買賣家資料，請稍後再試。",
		MarketplaceError:   "無法顯示市場比較資料，請稍後再試。",
		ResaleError:        "無法顯示轉售資料，請稍後再試。",
		TokenError:         "無法取得交易資料，請稍後再試。",
		OwnedError:         "無法取得持有的 Token，請稍後再試。",
		InvalidTokenID:     "Token ID 必須是 0 到 9999 之間的數字",
		InvalidAddress:     "錢包地址格式錯誤",
		NoOwnedTokens:      "此地址沒有持有任何 Token",

		TopBuyers:         "主要買家",
		TopSellers:        "主要賣家",
		BuyerAddress:      "買家地址",
		SellerAddress:     "賣家地址",
		TotalVolume:       "總銷售量",
		VolumeComparison:  "總銷售量比較",
		TradeComparison:   "交易次數比較",
		VolumeUSD:         "總銷售量 (USD)",
		TradeCount:        "交易次數",
		TokenHistoryTitle: "Token ID %d 交易記錄",
		SoldDate:          "交易日期",
		PriceUSD:          "價格(USD)",

		AveragePrice:      "平均價格",
		HighestPrice:      "最高價格",
		HighestPriceToken: "最高價 Token ID",
		RarityRank:        "稀有度排名",
		TotalProfit:       "總利潤",
		AverageProfit:     "平均利潤",
		ResaleCount:       "轉售次數",
		Seller:            "賣家",
		Loading:           "載入中...",
	},
	"en": {
		NoData:             "No data",
		TimeBasedError:     "Unable to load time-based data, please try again later.",
		BuyersSellersError: "Unable to display buyer and seller data, please try again later.",
		MarketplaceError:   "Unable to display marketplace comparison, please try again later.",
		ResaleError:        "Unable to display resale data, please try again later.",
		TokenError:         "Unable to fetch transaction data, please try again later.",
		OwnedError:         "Unable to fetch owned tokens, please try again later.",
		InvalidTokenID:     "Token ID must be a number between 0 and 9999",
		InvalidAddress:     "Invalid wallet address",
		NoOwnedTokens:      "This address holds no tokens",

		TopBuyers:         "Top Buyers",
		TopSellers:        "Top Sellers",
		BuyerAddress:      "Buyer Address",
		SellerAddress:     "Seller Address",
		TotalVolume:       "Total Volume",
		VolumeComparison:  "Volume Comparison",
		TradeComparison:   "Trade Count Comparison",
		VolumeUSD:         "Total Volume (USD)",
		TradeCount:        "Trades",
		TokenHistoryTitle: "Token ID %d Transactions",
		SoldDate:          "Sold Date",
		PriceUSD:          "Price (USD)",

		AveragePrice:      "Average Price",
		HighestPrice:      "Highest Price",
		HighestPriceToken: "Highest Price Token ID",
		RarityRank:        "Rarity Rank",
		TotalProfit:       "Total Profit",
		AverageProfit:     "Average Profit",
		ResaleCount:       "Resales",
		Seller:            "Seller",
		Loading:           "Loading...",
	},
}

// DefaultLocale is used when no or an unknown locale is configured.
const DefaultLocale = "zh-TW"

// MessagesFor returns the catalog for locale, falling back to DefaultLocale.
// Matching ignores case and accepts a bare language such as "en-US".
func MessagesFor(locale string) Messages {
	if m, ok := catalogs[locale]; ok {
		return m
	}
	lower := strings.ToLower(locale)
	for key, m := range catalogs {
		if strings.ToLower(key) == lower {
			return m
		}
	}
	if strings.HasPrefix(lower, "en") {
		return catalogs["en"]
	}
	return catalogs[DefaultLocale]
}

// Locales lists the supported locale names.
func Locales() []string {
	return []string{"zh-TW", "en"}
}

func (m Messages) tokenTitle(tokenID int) string {
	return fmt.Sprintf(m.TokenHistoryTitle, tokenID)
}
