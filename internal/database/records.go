// internal/database/records.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/ShambaSaha/UnoVerse-Multiplayer-UNO/internal/game"
)

// UpsertInitialGameState records the opening snapshot of a game (deck order,
// dealt hands, starting seat) so a finished match can be replayed from the
// history page. Failures are logged, not propagated; the live game does not
// depend on history writes.
func UpsertInitialGameState(st *game.GameState) {
	if DB == nil {
		return
	}
	ctx := context.Background()
	dataBytes, err := json.Marshal(st)
	if err != nil {
		log.Printf("failed to marshal initial game state for game %v: %v", st.ID, err)
		return
	}
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO games (id, status, initial_game_state, start_time)
			VALUES ($1, 'in_progress', $2, NOW())
			ON CONFLICT (id)
			DO UPDATE SET initial_game_state = EXCLUDED.initial_game_state, status='in_progress'
		`
		_, e := tx.Exec(ctx, q, st.ID, dataBytes)
		return e
	})
	if err != nil {
		log.Printf("failed to upsert initial game state for game %v: %v", st.ID, err)
	}
}

// RecordGameResult persists the final outcome: the winner, each player's
// leftover hand size, and the closing snapshot.
func RecordGameResult(ctx context.Context, st *game.GameState) error {
	if DB == nil {
		return nil
	}
	winnerID := st.WinnerID
	finalBytes, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal final snapshot: %w", err)
	}

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, final_game_state, end_time)
			VALUES ($1, 'completed', $2, NOW())
			ON CONFLICT (id)
			DO UPDATE SET status = 'completed', final_game_state = EXCLUDED.final_game_state, end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, st.ID, finalBytes); e != nil {
			return e
		}

		for _, pl := range st.Players {
			q := `
				INSERT INTO game_results (game_id, player_id, player_name, cards_left, did_win)
				VALUES ($1, $2, $3, $4, $5)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET cards_left=$4, did_win=$5
			`
			if _, e := tx.Exec(ctx, q, st.ID, pl.ID, pl.Name, len(pl.Hand), pl.ID == winnerID); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}
