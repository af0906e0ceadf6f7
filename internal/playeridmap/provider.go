package playeridmap

import (
	"fmt"
	"slices"
	"strings"
)

// Provider is an external site that the player id map carries ids and/or
// names for.
type Provider int

const (
	BaseballHQ Provider = iota
	BaseballProspectus
	BaseballReference
	CBS
	ClayDavenport
	DraftKings
	ESPN
	Fanduel
	FanGraphs
	FantasyPros
	Fantrax
	KFFL
	Masterball
	MLB
	NFBC
	Ottoneu
	Razzball
	Retrosheet
	Rotowire
	Yahoo
)

type providerInfo struct {
	name    string
	columns []string
}

var providers = [...]providerInfo{
	BaseballHQ:         {name: "BaseballHQ", columns: []string{"BaseballHQID"}},
	BaseballProspectus: {name: "BaseballProspectus", columns: []string{"BaseballProspectusID"}},
	BaseballReference:  {name: "BaseballReference", columns: []string{"BaseballReferenceID"}},
	CBS:                {name: "CBS", columns: []string{"CBSID", "CBSName"}},
	ClayDavenport:      {name: "ClayDavenport", columns: []string{"ClayDavenportID"}},
	DraftKings:         {name: "DraftKings", columns: []string{"DraftKingsName"}},
	ESPN:               {name: "ESPN", columns: []string{"ESPNID", "ESPNName"}},
	Fanduel:            {name: "Fanduel", columns: []string{"FanduelID", "FanduelName"}},
	FanGraphs:          {name: "FanGraphs", columns: []string{"FanGraphsID", "FanGraphsName"}},
	FantasyPros:        {name: "FantasyPros", columns: []string{"FantasyProsName"}},
	Fantrax:            {name: "Fantrax", columns: []string{"FantraxID", "FantraxName"}},
	KFFL:               {name: "KFFL", columns: []string{"KFFLName"}},
	Masterball:         {name: "Masterball", columns: []string{"MasterballName"}},
	MLB:                {name: "MLB", columns: []string{"MLBID", "MLBName"}},
	NFBC:               {name: "NFBC", columns: []string{"NFBCID", "NFBCName", "NFBCLastFirstName"}},
	Ottoneu:            {name: "Ottoneu", columns: []string{"OttoneuID"}},
	Razzball:           {name: "Razzball", columns: []string{"RazzballName"}},
	Retrosheet:         {name: "Retrosheet", columns: []string{"RetrosheetID"}},
	Rotowire:           {name: "Rotowire", columns: []string{"RotowireID", "RotowireName"}},
	Yahoo:              {name: "Yahoo", columns: []string{"YahooID", "YahooName"}},
}

// Providers returns every provider in declaration order.
func Providers() []Provider {
	out := make([]Provider, len(providers))
	for i := range providers {
		out[i] = Provider(i)
	}
	return out
}

func (p Provider) valid() bool {
	return p >= 0 && int(p) < len(providers)
}

func (p Provider) String() string {
	if !p.valid() {
		return fmt.Sprintf("Provider(%d)", int(p))
	}
	return providers[p].name
}

// Columns returns the columns the provider owns in the main table.
func (p Provider) Columns() []string {
	if !p.valid() {
		return nil
	}
	return slices.Clone(providers[p].columns)
}

func providerKey(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)
}

// ProviderByName looks a provider up by name, case and separators are ignored
// so "espn", "clay_davenport" and "Baseball Prospectus" all resolve.
func ProviderByName(name string) (Provider, error) {
	key := providerKey(name)
	for i, info := range providers {
		if providerKey(info.name) == key {
			return Provider(i), nil
		}
	}
	return 0, fmt.Errorf("unknown provider %q", name)
}
