package metrics

import (
	"gonum.org/v1/gonum/mat"
)

func rowMean(x *mat.Dense, s int) float64 {
	row := x.RawRowView(s)
	sum := 0.0
	for _, v := range row {
		sum += v
	}
	return sum / float64(len(row))
}

// Peak tracks the largest replica-mean count of one compartment.
type Peak struct {
	name        string
	compartment int
	peak        float64
	at          float64
	samples     int
}

func NewPeak(label string, compartment int) *Peak {
	return &Peak{
		name:        "peak_" + label,
		compartment: compartment,
	}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(t float64, x *mat.Dense) {
	v := rowMean(x, p.compartment)
	if p.samples == 0 || v > p.peak {
		p.peak = v
		p.at = t
	}
	p.samples++
}

func (p *Peak) Value() float64 { return p.peak }

// Time reports when the peak was first reached.
func (p *Peak) Time() float64 { return p.at }

func (p *Peak) Reset() {
	p.peak = 0
	p.at = 0
	p.samples = 0
}

// PeakTime reports the time of a Peak as its own metric.
type PeakTime struct {
	*Peak
}

func NewPeakTime(label string, compartment int) *PeakTime {
	p := NewPeak(label, compartment)
	p.name = "peak_time_" + label
	return &PeakTime{Peak: p}
}

func (p *PeakTime) Value() float64 { return p.at }

// Final keeps the replica-mean count of one compartment at the last observation.
type Final struct {
	name        string
	compartment int
	last        float64
}

func NewFinal(label string, compartment int) *Final {
	return &Final{
		name:        "final_" + label,
		compartment: compartment,
	}
}

func (f *Final) Name() string { return f.name }

func (f *Final) Observe(t float64, x *mat.Dense) {
	f.last = rowMean(x, f.compartment)
}

func (f *Final) Value() float64 { return f.last }

func (f *Final) Reset() { f.last = 0 }
