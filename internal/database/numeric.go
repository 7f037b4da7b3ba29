package database

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// NumericToDecimal converts a NUMERIC column. NULL, NaN and infinities read
// as zero; money columns are NOT NULL and never hold them.
func NumericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero
	}
	if n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

// DecimalToNumeric converts a money amount for a NUMERIC(10,2) column,
// rounded to cents.
func DecimalToNumeric(d decimal.Decimal) (pgtype.Numeric, error) {
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, errors.Wrapf(err, "convert %s to numeric", d.String())
	}
	return n, nil
}
