package store

import (
	"encoding/csv"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/goldspanlabs/optopsy-mcp/internal/chain"
	"github.com/goldspanlabs/optopsy-mcp/internal/errors"
	"github.com/goldspanlabs/optopsy-mcp/internal/models"
)

// LoadChainCSV reads an options chain file into the canonical table.
// Header aliases and timestamp shapes are handled by the normaliser.
// The optional date range trims rows by quote date, inclusive.
func LoadChainCSV(path string, from, to time.Time) (*chain.Chain, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening chain file %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading chain file %s", path)
	}
	if len(records) == 0 {
		return nil, errors.NewSchemaError("", "empty chain file", nil)
	}

	c, err := chain.Build(chain.RawTable{Headers: records[0], Rows: records[1:]})
	if err != nil {
		return nil, err
	}
	return trimChain(c, from, to), nil
}

func trimChain(c *chain.Chain, from, to time.Time) *chain.Chain {
	if from.IsZero() && to.IsZero() {
		return c
	}
	out := &chain.Chain{}
	for i := 0; i < c.Len(); i++ {
		d := c.QuoteDate[i]
		if !from.IsZero() && d.Before(from) {
			continue
		}
		if !to.IsZero() && d.After(to) {
			continue
		}
		out.QuoteDate = append(out.QuoteDate, d)
		out.Expiration = append(out.Expiration, c.Expiration[i])
		out.Strike = append(out.Strike, c.Strike[i])
		out.OptionType = append(out.OptionType, c.OptionType[i])
		out.Bid = append(out.Bid, c.Bid[i])
		out.Ask = append(out.Ask, c.Ask[i])
		out.Delta = append(out.Delta, c.Delta[i])
		out.Symbol = append(out.Symbol, c.Symbol[i])
	}
	return out
}

// candleRow carries the CSV date as text so day precision survives
// both date and datetime spellings.
type candleRow struct {
	Date   string  `csv:"date"`
	Open   float64 `csv:"open"`
	High   float64 `csv:"high"`
	Low    float64 `csv:"low"`
	Close  float64 `csv:"close"`
	Volume float64 `csv:"volume"`
}

// LoadCandlesCSV reads a daily OHLCV file for signal evaluation.
func LoadCandlesCSV(path string) ([]models.Candle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening ohlcv file %s", path)
	}
	defer f.Close()

	var rows []candleRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, errors.NewSchemaError("ohlcv", "unmarshalling "+path, err)
	}

	out := make([]models.Candle, 0, len(rows))
	for _, r := range rows {
		d, err := chain.ParseDay(r.Date)
		if err != nil {
			return nil, errors.NewSchemaError("date", "unparseable date "+r.Date, err)
		}
		out = append(out, models.Candle{
			Date:   d,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
		})
	}
	return out, nil
}
