// Package aqi implements the piecewise-linear AQI breakpoint lookup for
// PM10 and PM2.5 24-hour concentrations, following the EPA AQI technical
// assistance document (Table 6).
package aqi

import (
	"fmt"
	"math"
)

// Value is an AQI value computed from a particle concentration.
type Value struct {
	aqi float64
}

// ErrOutOfScale is returned when a concentration falls outside every
// breakpoint row of the table it is being looked up against.
type ErrOutOfScale struct {
	Concentration float64
}

func (e *ErrOutOfScale) Error() string {
	return fmt.Sprintf("aqi: concentration %.3f is out of scale", e.Concentration)
}

type tableRow struct {
	iLo, iHi   float64
	bpLo, bpHi float64
}

func (r tableRow) contains(c float64) bool {
	return c >= r.bpLo && c <= r.bpHi
}

// pm25Rows holds the PM2.5, 24-hour breakpoint table.
var pm25Rows = [7]tableRow{
	{iLo: 0, iHi: 50, bpLo: 0.0, bpHi: 12.0},
	{iLo: 51, iHi: 100, bpLo: 12.1, bpHi: 35.4},
	{iLo: 101, iHi: 150, bpLo: 35.5, bpHi: 55.4},
	{iLo: 151, iHi: 200, bpLo: 55.5, bpHi: 150.4},
	{iLo: 201, iHi: 300, bpLo: 150.5, bpHi: 250.4},
	{iLo: 301, iHi: 400, bpLo: 250.5, bpHi: 350.4},
	{iLo: 401, iHi: 500, bpLo: 350.5, bpHi: 500.4},
}

// pm10Rows holds the PM10, 24-hour breakpoint table.
var pm10Rows = [7]tableRow{
	{iLo: 0, iHi: 50, bpLo: 0, bpHi: 54},
	{iLo: 51, iHi: 100, bpLo: 55, bpHi: 154},
	{iLo: 101, iHi: 150, bpLo: 155, bpHi: 254},
	{iLo: 151, iHi: 200, bpLo: 255, bpHi: 354},
	{iLo: 201, iHi: 300, bpLo: 355, bpHi: 424},
	{iLo: 301, iHi: 400, bpLo: 425, bpHi: 504},
	{iLo: 401, iHi: 500, bpLo: 505, bpHi: 604},
}

func fromTable(rows []tableRow, c float64) (Value, error) {
	for _, row := range rows {
		if row.contains(c) {
			aqi := (row.iHi-row.iLo)/(row.bpHi-row.bpLo)*(c-row.bpLo) + row.iLo
			return Value{aqi: aqi}, nil
		}
	}
	return Value{}, &ErrOutOfScale{Concentration: c}
}

// FromPM25 computes the AQI for a PM2.5 concentration, rounding the input
// to one decimal place first, per the spec.
func FromPM25(pm25 float32) (Value, error) {
	c := math.Round(float64(pm25)*10.0) / 10.0
	return fromTable(pm25Rows[:], c)
}

// FromPM10 computes the AQI for a PM10 concentration, rounding the input
// to the nearest integer first, per the spec.
func FromPM10(pm10 float32) (Value, error) {
	c := math.Round(float64(pm10))
	return fromTable(pm10Rows[:], c)
}

// Get returns the AQI rounded to the nearest integer.
func (v Value) Get() uint16 {
	return uint16(math.Round(v.aqi))
}

// GetAsDEBS returns the AQI multiplied by 1000 and rounded, as required by
// the challenge wire format for integer AQI fields.
func (v Value) GetAsDEBS() int32 {
	return int32(math.Round(v.aqi * 1000.0))
}
