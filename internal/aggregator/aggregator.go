// Package aggregator derives the report metrics from the in-scope flows of a
// single trace file.
package aggregator

import (
	"errors"
	"fmt"
	"math"

	"FlowMonReport/internal/model"
)

var (
	// ErrDegenerateAggregate is returned when a ratio has no denominator.
	ErrDegenerateAggregate = errors.New("degenerate aggregate")
	// ErrNoPacketsSent means no in-scope flow sent a packet.
	ErrNoPacketsSent = fmt.Errorf("%w: no packets sent", ErrDegenerateAggregate)
	// ErrNoPacketsReceived means no in-scope flow received a packet.
	ErrNoPacketsReceived = fmt.Errorf("%w: no packets received", ErrDegenerateAggregate)
	// ErrZeroDurationFlow is returned by the strict policy for a flow whose
	// first and last packets were received at the same instant.
	ErrZeroDurationFlow = errors.New("zero duration flow")
)

// DelayUnit selects the unit of the end-to-end delay column.
type DelayUnit string

const (
	Microseconds DelayUnit = "us"
	Milliseconds DelayUnit = "ms"
)

// Options configures an Aggregator.
type Options struct {
	// SkipDegenerate drops flows that received nothing or whose receive
	// window is zero. When false every in-scope flow is summed and a zero
	// receive window is an error.
	SkipDegenerate bool
	// ThroughputPrecision is the number of decimals kept for throughput.
	ThroughputPrecision int
	// DelayUnit defaults to Microseconds.
	DelayUnit DelayUnit
}

// StrictOptions sums every flow and reports integer throughput.
func StrictOptions() Options {
	return Options{ThroughputPrecision: 0, DelayUnit: Microseconds}
}

// FilteredOptions skips degenerate flows and reports throughput with two decimals.
func FilteredOptions() Options {
	return Options{SkipDegenerate: true, ThroughputPrecision: 2, DelayUnit: Microseconds}
}

const ratioPrecision = 2

// Aggregator implements model.Aggregator.
type Aggregator struct {
	opts         Options
	delayDivisor float64
}

// New creates an Aggregator.
func New(opts Options) (*Aggregator, error) {
	if opts.ThroughputPrecision < 0 {
		return nil, fmt.Errorf("negative throughput precision %d", opts.ThroughputPrecision)
	}
	a := &Aggregator{opts: opts}
	switch opts.DelayUnit {
	case Microseconds, "":
		a.opts.DelayUnit = Microseconds
		a.delayDivisor = 1e3
	case Milliseconds:
		a.delayDivisor = 1e6
	default:
		return nil, fmt.Errorf("unknown delay unit %q", opts.DelayUnit)
	}
	return a, nil
}

// Precision reports the rounding applied to each metric.
func (a *Aggregator) Precision() model.Precision {
	return model.Precision{
		Throughput:    a.opts.ThroughputPrecision,
		EndToEndDelay: 0,
		Ratio:         ratioPrecision,
	}
}

// Aggregate sums the counters of records and derives throughput (kbit/s),
// mean end-to-end delay, delivery ratio and drop ratio (percent).
func (a *Aggregator) Aggregate(records []model.FlowRecord) (model.AggregateMetrics, error) {
	var (
		m              model.AggregateMetrics
		throughputBits float64
		delaySum       float64
	)

	for _, r := range records {
		duration := r.ReceiveWindow()
		if a.opts.SkipDegenerate && (r.RxPackets == 0 || duration == 0) {
			m.FlowsSkipped++
			continue
		}
		if duration == 0 {
			return model.AggregateMetrics{}, fmt.Errorf("%w: flow %d", ErrZeroDurationFlow, r.FlowID)
		}

		throughputBits += float64(r.RxBytes) * 8 / duration
		m.PacketsSent += r.TxPackets
		m.PacketsReceived += r.RxPackets
		delaySum += r.DelaySum
		m.FlowsIncluded++
	}

	if m.PacketsReceived == 0 {
		return model.AggregateMetrics{}, ErrNoPacketsReceived
	}
	if m.PacketsSent == 0 {
		return model.AggregateMetrics{}, ErrNoPacketsSent
	}

	sent := float64(m.PacketsSent)
	received := float64(m.PacketsReceived)

	m.Throughput = Round(throughputBits/1024, a.opts.ThroughputPrecision)
	m.EndToEndDelay = Round(delaySum/received/a.delayDivisor, 0)
	m.DeliveryRatio = Round(received/sent*100, ratioPrecision)
	m.DropRatio = Round((sent-received)/sent*100, ratioPrecision)
	return m, nil
}

// Round rounds x to the given number of decimals, ties to even.
func Round(x float64, decimals int) float64 {
	if decimals <= 0 {
		return math.RoundToEven(x)
	}
	pow := math.Pow10(decimals)
	return math.RoundToEven(x*pow) / pow
}
