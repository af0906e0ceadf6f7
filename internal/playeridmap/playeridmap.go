// Package playeridmap holds one read of the player id map and its changelog
// and exposes per provider projections joined against the identity columns.
package playeridmap

import (
	"context"
	"errors"
	"fmt"
	"mlbids/internal/components/assert"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/normalize"
	"sync"
	"time"
)

const (
	report_map_new = "map.new"
)

// ErrNotPopulated is returned by the accessors of a Map that was not built by
// New.
var ErrNotPopulated = errors.New("player id map is not populated")

var ErrNoChangelog = errors.New("changelog has no entries")

var (
	infoColumns = []string{
		"Last Name", "First Name", "PlayerName", "LastFirstName", "Birthdate", "PlayerID",
	}
	generalColumns = []string{
		"Bats", "Throws", "Team", "League", "Position", "AllPositions", "Active",
	}
)

// InfoColumns are the identity columns of every projection.
func InfoColumns() []string {
	return append([]string(nil), infoColumns...)
}

// GeneralColumns are the status columns that follow the identity columns in
// General and every provider projection.
func GeneralColumns() []string {
	return append([]string(nil), generalColumns...)
}

type TableReader interface {
	ReadMain(ctx context.Context) (normalize.Table, error)
	ReadChangelog(ctx context.Context) (normalize.Table, error)
}

// Map is read only once built, every projection is recomputed from the held
// tables.
type Map struct {
	populated bool
	data      normalize.Table
	changelog normalize.Table
}

// New reads the main table and the changelog concurrently.
func New(ctx context.Context, reader TableReader, tel telemetry.API) (Map, error) {
	assert.NotNil(reader)
	assert.NotNil(tel)
	tel = telemetry.NewScopedAPI("playeridmap", tel)

	var (
		wg                    sync.WaitGroup
		data, changelog       normalize.Table
		dataErr, changelogErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		data, dataErr = reader.ReadMain(ctx)
	}()
	go func() {
		defer wg.Done()
		changelog, changelogErr = reader.ReadChangelog(ctx)
	}()
	wg.Wait()

	if dataErr != nil {
		dataErr = fmt.Errorf("read player id map: %w", dataErr)
	}
	if changelogErr != nil {
		changelogErr = fmt.Errorf("read changelog: %w", changelogErr)
	}
	err := errors.Join(dataErr, changelogErr)
	if err != nil {
		tel.ReportBroken(report_map_new, err)
		return Map{}, err
	}

	tel.ReportCount(report_map_new, int64(data.Len()))
	return Map{populated: true, data: data, changelog: changelog}, nil
}

// FromTables builds a map from tables that were already read.
func FromTables(data, changelog normalize.Table) Map {
	return Map{populated: true, data: data, changelog: changelog}
}

// Data is a copy of the main table.
func (m Map) Data() (normalize.Table, error) {
	if !m.populated {
		return normalize.Table{}, ErrNotPopulated
	}
	return m.data.Clone(), nil
}

// Changelog is a copy of the changelog.
func (m Map) Changelog() (normalize.Table, error) {
	if !m.populated {
		return normalize.Table{}, ErrNotPopulated
	}
	return m.changelog.Clone(), nil
}

// Info is the identity columns of every player.
func (m Map) Info() (normalize.Table, error) {
	if !m.populated {
		return normalize.Table{}, ErrNotPopulated
	}
	return m.data.Select(infoColumns...)
}

// General is Info followed by the status columns.
func (m Map) General() (normalize.Table, error) {
	info, err := m.Info()
	if err != nil {
		return normalize.Table{}, err
	}
	status, err := m.data.Select(generalColumns...)
	if err != nil {
		return normalize.Table{}, err
	}
	return normalize.Join(info, status)
}

// Projection is General followed by the columns the provider owns.
func (m Map) Projection(p Provider) (normalize.Table, error) {
	if !p.valid() {
		return normalize.Table{}, fmt.Errorf("unknown provider %v", p)
	}
	general, err := m.General()
	if err != nil {
		return normalize.Table{}, err
	}
	owned, err := m.data.Select(p.Columns()...)
	if err != nil {
		return normalize.Table{}, err
	}
	return normalize.Join(general, owned)
}

// LastUpdate is the date of the first changelog entry, upstream lists the
// most recent change first.
func (m Map) LastUpdate() (time.Time, error) {
	if !m.populated {
		return time.Time{}, ErrNotPopulated
	}
	if m.changelog.Len() == 0 {
		return time.Time{}, ErrNoChangelog
	}
	value, ok := m.changelog.Value(0, "Date")
	if !ok {
		return time.Time{}, fmt.Errorf("changelog has no Date column")
	}
	date, ok := value.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("changelog date is %T, not a date", value)
	}
	return date, nil
}

func (m Map) BaseballHQ() (normalize.Table, error) { return m.Projection(BaseballHQ) }
func (m Map) BaseballProspectus() (normalize.Table, error) { return m.Projection(BaseballProspectus) }
func (m Map) BaseballReference() (normalize.Table, error) { return m.Projection(BaseballReference) }
func (m Map) CBS() (normalize.Table, error) { return m.Projection(CBS) }
func (m Map) ClayDavenport() (normalize.Table, error) { return m.Projection(ClayDavenport) }
func (m Map) DraftKings() (normalize.Table, error) { return m.Projection(DraftKings) }
func (m Map) ESPN() (normalize.Table, error) { return m.Projection(ESPN) }
func (m Map) Fanduel() (normalize.Table, error) { return m.Projection(Fanduel) }
func (m Map) FanGraphs() (normalize.Table, error) { return m.Projection(FanGraphs) }
func (m Map) FantasyPros() (normalize.Table, error) { return m.Projection(FantasyPros) }
func (m Map) Fantrax() (normalize.Table, error) { return m.Projection(Fantrax) }
func (m Map) KFFL() (normalize.Table, error) { return m.Projection(KFFL) }
func (m Map) Masterball() (normalize.Table, error) { return m.Projection(Masterball) }
func (m Map) MLB() (normalize.Table, error) { return m.Projection(MLB) }
func (m Map) NFBC() (normalize.Table, error) { return m.Projection(NFBC) }
func (m Map) Ottoneu() (normalize.Table, error) { return m.Projection(Ottoneu) }
func (m Map) Razzball() (normalize.Table, error) { return m.Projection(Razzball) }
func (m Map) Retrosheet() (normalize.Table, error) { return m.Projection(Retrosheet) }
func (m Map) Rotowire() (normalize.Table, error) { return m.Projection(Rotowire) }
func (m Map) Yahoo() (normalize.Table, error) { return m.Projection(Yahoo) }
