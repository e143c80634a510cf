// Package exporter writes backtest output in a schema that losslessly
// represents the trade records and summary metrics, for downstream
// plotting/reporting tools.
package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"price-action-bot-go/internal/backtest"
)

// WriteTradesCSV writes one row per completed trade plus a trailing
// summary block, mirroring everything the core exposes for reporting.
func WriteTradesCSV(res *backtest.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	header := []string{
		"direction", "entry_index", "entry_time", "entry_price",
		"stop_loss", "take_profit",
		"exit_index", "exit_time", "exit_price", "exit_reason",
		"zone_id", "pnl",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, t := range res.Trades {
		row := []string{
			string(t.Direction),
			strconv.Itoa(t.EntryIndex),
			t.EntryTime.Format("2006-01-02T15:04:05Z07:00"),
			formatF(t.EntryPrice),
			formatF(t.StopLoss),
			formatF(t.TakeProfit),
			strconv.Itoa(t.ExitIndex),
			t.ExitTime.Format("2006-01-02T15:04:05Z07:00"),
			formatF(t.ExitPrice),
			string(t.ExitReason),
			strconv.FormatInt(t.ZoneID, 10),
			formatF(t.PnL),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	// Summary block: key/value rows after a blank line keeps the file
	// trivially parseable while staying human-readable.
	if err := w.Write([]string{}); err != nil {
		return err
	}
	summary := [][2]string{
		{"total_trades", strconv.Itoa(res.Summary.TotalTrades)},
		{"winning_trades", strconv.Itoa(res.Summary.WinningTrades)},
		{"losing_trades", strconv.Itoa(res.Summary.LosingTrades)},
		{"win_rate", formatF(res.Summary.WinRate)},
		{"cumulative_pnl", formatF(res.Summary.CumulativePnL)},
		{"max_drawdown", formatF(res.Summary.MaxDrawdown)},
		{"profit_factor", formatF(res.Summary.ProfitFactor)},
	}
	for _, kv := range summary {
		if err := w.Write([]string{kv[0], kv[1]}); err != nil {
			return err
		}
	}

	// flush explicitly so a truncated write surfaces as an error
	w.Flush()
	return w.Error()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
