package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"nseScreener/internal/domain"
)

// WriteCandlesToCSV saves a candle series as a CSV disk cache.
func WriteCandlesToCSV(candles []domain.Candle, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{"timestamp", "open", "high", "low", "close", "volume"})

	for _, c := range candles {
		writer.Write([]string{
			c.Timestamp.Format(time.RFC3339),
			strconv.FormatFloat(c.Open, 'f', -1, 64),
			strconv.FormatFloat(c.High, 'f', -1, 64),
			strconv.FormatFloat(c.Low, 'f', -1, 64),
			strconv.FormatFloat(c.Close, 'f', -1, 64),
			strconv.FormatInt(c.Volume, 10),
		})
	}
	return writer.Error()
}

// ReadCandlesFromCSV loads a candle series from a CSV disk cache.
func ReadCandlesFromCSV(filename string) ([]domain.Candle, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil // header only or empty
	}

	candles := make([]domain.Candle, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 6 {
			return nil, fmt.Errorf("row %d: expected 6 columns, got %d", i+2, len(rec))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp %q: %w", i+2, rec[0], err)
		}
		open, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid open: %w", i+2, err)
		}
		high, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid high: %w", i+2, err)
		}
		low, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid low: %w", i+2, err)
		}
		closePrice, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid close: %w", i+2, err)
		}
		volume, err := strconv.ParseInt(rec[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid volume: %w", i+2, err)
		}
		candles = append(candles, domain.Candle{
			Timestamp: ts,
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closePrice,
			Volume:    volume,
		})
	}
	return candles, nil
}

// WriteTradesToCSV exports closed trades for external analysis.
func WriteTradesToCSV(trades []domain.Trade, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	writer.Write([]string{
		"symbol", "direction", "entry_date", "exit_date", "entry_price", "exit_price",
		"stop_loss", "target", "shares", "pnl", "pnl_pct", "r_multiple",
		"exit_reason", "pattern", "confidence", "hold_days",
	})

	for _, t := range trades {
		writer.Write([]string{
			t.Symbol,
			string(t.Direction),
			t.EntryDate.Format(time.RFC3339),
			t.ExitDate.Format(time.RFC3339),
			strconv.FormatFloat(t.EntryPrice, 'f', -1, 64),
			strconv.FormatFloat(t.ExitPrice, 'f', -1, 64),
			strconv.FormatFloat(t.StopLoss, 'f', -1, 64),
			strconv.FormatFloat(t.Target, 'f', -1, 64),
			strconv.Itoa(t.Shares),
			strconv.FormatFloat(t.PnL, 'f', -1, 64),
			strconv.FormatFloat(t.PnLPct, 'f', -1, 64),
			strconv.FormatFloat(t.RMultiple, 'f', -1, 64),
			string(t.ExitReason),
			t.Pattern,
			strconv.FormatFloat(t.Confidence, 'f', -1, 64),
			strconv.Itoa(t.HoldDays),
		})
	}
	return writer.Error()
}

// ReadTradesFromCSV loads previously exported trades for offline analysis.
func ReadTradesFromCSV(filename string) ([]domain.Trade, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	trades := make([]domain.Trade, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 16 {
			return nil, fmt.Errorf("row %d: expected 16 columns, got %d", i+2, len(rec))
		}
		entryDate, err := time.Parse(time.RFC3339, rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid entry_date: %w", i+2, err)
		}
		exitDate, err := time.Parse(time.RFC3339, rec[3])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid exit_date: %w", i+2, err)
		}
		entryPrice, _ := strconv.ParseFloat(rec[4], 64)
		exitPrice, _ := strconv.ParseFloat(rec[5], 64)
		stopLoss, _ := strconv.ParseFloat(rec[6], 64)
		target, _ := strconv.ParseFloat(rec[7], 64)
		shares, _ := strconv.Atoi(rec[8])
		pnl, _ := strconv.ParseFloat(rec[9], 64)
		pnlPct, _ := strconv.ParseFloat(rec[10], 64)
		rMultiple, _ := strconv.ParseFloat(rec[11], 64)
		confidence, _ := strconv.ParseFloat(rec[14], 64)
		holdDays, _ := strconv.Atoi(rec[15])

		trades = append(trades, domain.Trade{
			Symbol:     rec[0],
			Direction:  domain.ParseDirection(rec[1]),
			EntryDate:  entryDate,
			ExitDate:   exitDate,
			EntryPrice: entryPrice,
			ExitPrice:  exitPrice,
			StopLoss:   stopLoss,
			Target:     target,
			Shares:     shares,
			PnL:        pnl,
			PnLPct:     pnlPct,
			RMultiple:  rMultiple,
			ExitReason: domain.ExitReason(rec[12]),
			Pattern:    rec[13],
			Confidence: confidence,
			HoldDays:   holdDays,
		})
	}
	return trades, nil
}

// ReadSignalsFromCSV loads externally generated signals. The direction
// column follows the screener convention: "buy" maps to long, anything
// else to short.
func ReadSignalsFromCSV(filename string) ([]domain.Signal, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	sigs := make([]domain.Signal, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 8 {
			return nil, fmt.Errorf("row %d: expected 8 columns, got %d", i+2, len(rec))
		}
		ts, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid timestamp: %w", i+2, err)
		}
		entry, err := strconv.ParseFloat(rec[3], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid entry_price: %w", i+2, err)
		}
		stop, err := strconv.ParseFloat(rec[4], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid stop_loss: %w", i+2, err)
		}
		target, err := strconv.ParseFloat(rec[5], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid target: %w", i+2, err)
		}
		confidence, _ := strconv.ParseFloat(rec[7], 64)

		sigs = append(sigs, domain.Signal{
			Timestamp:  ts,
			Symbol:     rec[1],
			Direction:  domain.ParseDirection(rec[2]),
			EntryPrice: entry,
			StopLoss:   stop,
			Target:     target,
			Pattern:    rec[6],
			Confidence: confidence,
		})
	}
	return sigs, nil
}
