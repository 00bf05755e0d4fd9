package model

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Money is a currency amount in rupees. It is stored as a decimal string in
// MongoDB and marshalled as a JSON number.
type Money struct {
	decimal.Decimal
}

func NewMoney(value string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", value, err)
	}
	return Money{Decimal: d}, nil
}

func MustMoney(value string) Money {
	m, err := NewMoney(value)
	if err != nil {
		panic(err)
	}
	return m
}

func MoneyFromInt(value int64) Money {
	return Money{Decimal: decimal.NewFromInt(value)}
}

func ZeroMoney() Money {
	return Money{Decimal: decimal.Zero}
}

func (m Money) Add(other Money) Money {
	return Money{Decimal: m.Decimal.Add(other.Decimal)}
}

func (m Money) MulInt(n int) Money {
	return Money{Decimal: m.Decimal.Mul(decimal.NewFromInt(int64(n)))}
}

func (m Money) Equal(other Money) bool {
	return m.Decimal.Equal(other.Decimal)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	return m.Decimal.UnmarshalJSON(data)
}

func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(m.Decimal.String())
}

func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := (bson.RawValue{Type: t, Value: data}).Unmarshal(&s); err != nil {
		return fmt.Errorf("decode amount: %w", err)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", s, err)
	}
	m.Decimal = d
	return nil
}
