package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"coinassist/internal/domain/models"
)

// seedFile is the on-disk shape of the knowledge file
type seedFile struct {
	MetadataVersion string     `json:"metadata_version"`
	Coins           []seedCoin `json:"coins"`
}

type seedCoin struct {
	Coin        string   `json:"coin"`
	Symbol      string   `json:"symbol"`
	Description string   `json:"description"`
	LaunchYear  int      `json:"launch_year"`
	Consensus   string   `json:"consensus"`
	ChainType   string   `json:"chain_type"`
	Creator     string   `json:"creator"`
	MaxSupply   *float64 `json:"max_supply"`
}

// LoadSeedFile reads the knowledge file and returns the initial coin records
// keyed by uppercase symbol. The file is consumed once at load time; the
// stores never re-read it.
func LoadSeedFile(path string) (map[string]*models.CoinRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read knowledge file: %w", err)
	}

	var seed seedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse knowledge file: %w", err)
	}

	records := make(map[string]*models.CoinRecord, len(seed.Coins))
	for _, coin := range seed.Coins {
		symbol := strings.ToUpper(coin.Symbol)
		if symbol == "" {
			continue
		}
		records[symbol] = &models.CoinRecord{
			Symbol: symbol,
			Name:   coin.Coin,
			Metadata: &models.CoinMetadata{
				Description: coin.Description,
				LaunchYear:  coin.LaunchYear,
				Creator:     coin.Creator,
				Consensus:   coin.Consensus,
				ChainType:   coin.ChainType,
				MaxSupply:   coin.MaxSupply,
			},
		}
	}

	return records, nil
}
