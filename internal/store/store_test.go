package store

import (
	"context"
	"database/sql"
	"mlbids/internal/components/telemetry"
	"mlbids/internal/normalize"
	"mlbids/internal/playeridmap"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t testing.TB) (Store, *sql.DB) {
	db, err := Config{File: ":memory:"}.OpenDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := NewStore(context.Background(), db, telemetry.SlogAPI{})
	require.NoError(t, err)
	return store, db
}

func testMap(players int) playeridmap.Map {
	data := normalize.Table{
		Columns: []string{"PlayerID", "First Name", "Birthdate", "AllPositions", "Active", "ESPNID", "Team"},
	}
	ids := []string{"acunaro01", "ohtansh01", "judgeaa01"}
	for i := 0; i < players; i++ {
		data.Rows = append(data.Rows, normalize.Row{
			ids[i], "Player", time.Date(1997, time.December, 18, 0, 0, 0, 0, time.UTC),
			[]string{"OF", "DH"}, i%2 == 0, int64(36185 + i), nil,
		})
	}
	changelog := normalize.Table{
		Columns: []string{"Date", "Change"},
		Rows: []normalize.Row{
			{time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC), "Added \"Jackson\" Holliday"},
		},
	}
	return playeridmap.FromTables(data, changelog)
}

func TestExport(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()
	now := time.Unix(1727740800, 0)

	_, ok, err := store.LastExport(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	export, err := store.Export(ctx, testMap(3), now)
	require.NoError(t, err)
	require.Equal(t, 3, export.Players)
	require.Equal(t, 1, export.Changes)

	var (
		firstName    string
		birthdate    string
		allPositions string
		active       int64
		espnID       int64
		team         sql.NullString
	)
	err = db.QueryRowContext(
		ctx,
		`select "First Name", Birthdate, AllPositions, Active, ESPNID, Team from player_id_map where PlayerID = ?`,
		"ohtansh01",
	).Scan(&firstName, &birthdate, &allPositions, &active, &espnID, &team)
	require.NoError(t, err)
	require.Equal(t, "Player", firstName)
	require.Equal(t, "1997-12-18", birthdate)
	require.Equal(t, "OF/DH", allPositions)
	require.Equal(t, int64(0), active)
	require.Equal(t, int64(36186), espnID)
	require.False(t, team.Valid)

	var change string
	err = db.QueryRowContext(ctx, "select Change from changelog").Scan(&change)
	require.NoError(t, err)
	require.Equal(t, `Added "Jackson" Holliday`, change)

	// a second export replaces the tables
	second, err := store.Export(ctx, testMap(2), now.Add(time.Hour))
	require.NoError(t, err)
	require.NotEqual(t, export.RunID, second.RunID)

	var count int
	err = db.QueryRowContext(ctx, "select count(*) from player_id_map").Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 2, count)

	last, ok, err := store.LastExport(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Export{
		RunID:      second.RunID,
		ExportedAt: now.Add(time.Hour),
		LastUpdate: time.Date(2024, time.October, 1, 0, 0, 0, 0, time.UTC),
		Players:    2,
		Changes:    1,
	}, last)
}

func TestExportRequiresPopulatedMap(t *testing.T) {
	store, _ := openTestStore(t)
	_, err := store.Export(context.Background(), playeridmap.Map{}, time.Now())
	require.ErrorIs(t, err, playeridmap.ErrNotPopulated)
}

func TestWriteTableColumnTypes(t *testing.T) {
	store, db := openTestStore(t)
	ctx := context.Background()

	err := store.WriteTable(ctx, "mixed", normalize.Table{
		Columns: []string{"id", "name", "empty"},
		Rows: []normalize.Row{
			{int64(1), "a", nil},
			{nil, "b", nil},
		},
	})
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, `select name, type from pragma_table_info('mixed')`)
	require.NoError(t, err)
	defer rows.Close()

	types := map[string]string{}
	for rows.Next() {
		var name, typ string
		require.NoError(t, rows.Scan(&name, &typ))
		types[name] = typ
	}
	require.NoError(t, rows.Err())
	require.Equal(t, map[string]string{"id": "INTEGER", "name": "TEXT", "empty": "TEXT"}, types)
}

func TestOpenDBRequiresTarget(t *testing.T) {
	_, err := Config{}.OpenDB()
	require.Error(t, err)
}
