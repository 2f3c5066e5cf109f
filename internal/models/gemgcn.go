// Package models assembles the gauge-equivariant mesh network from the
// layer library: a U-Net style encoder/decoder over three mesh scales with
// parallel-transport pooling and skip connections, predicting one ambient
// 3D vector per vertex.
package models

import (
	"fmt"

	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/mesh"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/nn"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/tensor"
	"github.com/MIAGroupUT/coronary-mesh-convolution/internal/transform"
)

// Hidden width of every intermediate representation.
const channels = 26

// Config holds the construction parameters of GEMGCN.
type Config struct {
	// Radii are the scale radii, finest first. Three levels are expected,
	// matching the two pooling steps of the architecture.
	Radii []float64

	// InRep and OutRep describe the input and output steerable
	// representations (scalar channel count, total channel count).
	InRep  nn.Rep
	OutRep nn.Rep

	// MaxOrder is the maximum rotation order of intermediate features.
	// Defaults to 2.
	MaxOrder int

	// NRings is the radial resolution of the convolution basis.
	// Defaults to 2.
	NRings int
}

func (c *Config) applyDefaults() {
	if c.MaxOrder == 0 {
		c.MaxOrder = 2
	}
	if c.NRings == 0 {
		c.NRings = 2
	}
}

// GEMGCN is the gauge-equivariant mesh convolutional network.
//
// The layer graph is fixed at construction; Forward is a pure function of
// the batch and the current parameter values.
type GEMGCN[B tensor.Backend] struct {
	cfg     Config
	backend B

	// Derived per forward call, one composition per scale radius.
	scaleTransforms []transform.Compose[B]

	// Encoder
	conv01 *nn.GemResNetBlock[B]
	conv02 *nn.GemResNetBlock[B]

	// Downstream
	pool1  *nn.ParallelTransportPool[B]
	conv11 *nn.GemResNetBlock[B]
	conv12 *nn.GemResNetBlock[B]

	pool2  *nn.ParallelTransportPool[B]
	conv21 *nn.GemResNetBlock[B]
	conv22 *nn.GemResNetBlock[B]

	// Upstream
	unpool2 *nn.ParallelTransportPool[B]
	conv13  *nn.GemResNetBlock[B]
	conv14  *nn.GemResNetBlock[B]
	conv15  *nn.GemResNetBlock[B]
	conv16  *nn.GemResNetBlock[B]

	// Decoder
	unpool1 *nn.ParallelTransportPool[B]
	conv03  *nn.GemResNetBlock[B]
	conv04  *nn.GemResNetBlock[B]
	conv05  *nn.GemResNetBlock[B]
	conv06  *nn.GemResNetBlock[B]
}

// New constructs the network.
func New[B tensor.Backend](cfg Config, backend B) (*GEMGCN[B], error) {
	cfg.applyDefaults()

	if len(cfg.Radii) != 3 {
		return nil, fmt.Errorf("gemgcn: expected 3 scale radii (finest, mid, coarse), got %d", len(cfg.Radii))
	}
	if err := cfg.InRep.Validate(); err != nil {
		return nil, fmt.Errorf("gemgcn: input rep: %w", err)
	}
	if err := cfg.OutRep.Validate(); err != nil {
		return nil, fmt.Errorf("gemgcn: output rep: %w", err)
	}

	opts := nn.BlockOptions{
		NRings:     cfg.NRings,
		BandLimit:  2,
		NumSamples: 7,
		Checkpoint: true,
		BatchNorm:  true,
	}
	lastOpts := opts
	lastOpts.LastLayer = true

	hidden := nn.Regular(channels)
	skip := nn.Regular(channels + channels)

	m := &GEMGCN[B]{
		cfg:     cfg,
		backend: backend,
	}

	// Derived once per forward call, never cached across calls.
	for i, r := range cfg.Radii {
		m.scaleTransforms = append(m.scaleTransforms, transform.Compose[B]{
			transform.NewScaleMask[B](i),
			transform.NewGemPrecomp[B](cfg.NRings, cfg.MaxOrder, r),
		})
	}

	// Encoder
	m.conv01 = nn.NewGemResNetBlock(cfg.InRep, hidden, cfg.MaxOrder, opts, backend)
	m.conv02 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)

	// Downstream
	m.pool1 = nn.NewParallelTransportPool[B](1, false)
	m.conv11 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)
	m.conv12 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)

	m.pool2 = nn.NewParallelTransportPool[B](2, false)
	m.conv21 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)
	m.conv22 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)

	// Upstream
	m.unpool2 = nn.NewParallelTransportPool[B](2, true)
	m.conv13 = nn.NewGemResNetBlock(skip, hidden, cfg.MaxOrder, opts, backend)
	m.conv14 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)
	m.conv15 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)
	m.conv16 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)

	// Decoder
	m.unpool1 = nn.NewParallelTransportPool[B](1, true)
	m.conv03 = nn.NewGemResNetBlock(skip, hidden, cfg.MaxOrder, opts, backend)
	m.conv04 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)
	m.conv05 = nn.NewGemResNetBlock(hidden, hidden, cfg.MaxOrder, opts, backend)
	m.conv06 = nn.NewGemResNetBlock(hidden, cfg.OutRep, cfg.MaxOrder, lastOpts, backend)

	return m, nil
}

// Config returns the construction parameters.
func (m *GEMGCN[B]) Config() Config {
	return m.cfg
}

// PrepareInput assembles the initial feature tensor: the matrix features,
// a geodesic-distance channel in the order-0 slot, and a boundary
// condition channel when the declared input representation has room for
// one more channel than the base concatenation provides.
func (m *GEMGCN[B]) PrepareInput(batch *mesh.Batch[B]) *tensor.Tensor[float32, B] {
	features := batch.MatrixFeatures
	shape := features.Shape()
	n, irreps := shape[0], shape[2]

	geodesics := tensor.Zeros[float32](tensor.Shape{n, 1, irreps}, m.backend)
	gd := geodesics.Data()
	for v := 0; v < n; v++ {
		gd[v*irreps] = batch.Geo[v]
	}

	x := tensor.Cat([]*tensor.Tensor[float32, B]{features, geodesics}, 1)

	if m.cfg.InRep.Total > x.Shape()[1] {
		condition := tensor.Zeros[float32](tensor.Shape{n, 1, irreps}, m.backend)
		cd := condition.Data()
		for v := 0; v < n; v++ {
			cd[v*irreps] = batch.Condition[batch.BatchIndex[v]]
		}
		x = tensor.Cat([]*tensor.Tensor[float32, B]{x, condition}, 1)
	}

	return x
}

// PrepareScales derives the per-scale graph views. The result depends
// only on mesh geometry; callers with a static mesh may compute it once
// and use ForwardPrepared.
func (m *GEMGCN[B]) PrepareScales(batch *mesh.Batch[B]) []*transform.ScaleGraph[B] {
	scales := make([]*transform.ScaleGraph[B], len(m.scaleTransforms))
	for i, t := range m.scaleTransforms {
		scales[i] = t.Derive(batch)
	}
	return scales
}

// Forward evaluates the network on a batch and returns the ambient vector
// field, shape [N, 3] (singleton channel squeezed).
func (m *GEMGCN[B]) Forward(batch *mesh.Batch[B]) *tensor.Tensor[float32, B] {
	return m.ForwardPrepared(batch, m.PrepareScales(batch))
}

// ForwardPrepared evaluates the network with precomputed scale graphs.
func (m *GEMGCN[B]) ForwardPrepared(batch *mesh.Batch[B], scales []*transform.ScaleGraph[B]) *tensor.Tensor[float32, B] {
	if len(scales) != len(m.scaleTransforms) {
		panic(fmt.Sprintf("GEMGCN.Forward: expected %d scale graphs, got %d", len(m.scaleTransforms), len(scales)))
	}

	x := m.PrepareInput(batch)

	// Encoder
	x = m.conv01.Forward(x, scales[0])
	x = m.conv02.Forward(x, scales[0])

	// Downstream
	copy0 := x.Clone()
	x = m.pool1.Forward(x, batch)
	x = m.conv11.Forward(x, scales[1])
	x = m.conv12.Forward(x, scales[1])

	copy1 := x.Clone()
	x = m.pool2.Forward(x, batch)
	x = m.conv21.Forward(x, scales[2])
	x = m.conv22.Forward(x, scales[2])

	// Upstream
	x = m.unpool2.Forward(x, batch)
	x = tensor.Cat([]*tensor.Tensor[float32, B]{x, copy1}, 1)
	x = m.conv13.Forward(x, scales[1])
	x = m.conv14.Forward(x, scales[1])
	x = m.conv15.Forward(x, scales[1])
	x = m.conv16.Forward(x, scales[1])

	// Decoder
	x = m.unpool1.Forward(x, batch)
	x = tensor.Cat([]*tensor.Tensor[float32, B]{x, copy0}, 1)
	x = m.conv03.Forward(x, scales[0])
	x = m.conv04.Forward(x, scales[0])
	x = m.conv05.Forward(x, scales[0])
	x = m.conv06.Forward(x, scales[0])

	// Ambient vectors from tangential SO(2) features.
	out := nn.SO2ToAmbientVector(x, batch.Frame)
	if out.Shape()[1] == 1 {
		out = out.Squeeze(1)
	}
	return out
}

// blocks enumerates the named submodules in pipeline order.
func (m *GEMGCN[B]) blocks() []struct {
	name   string
	module nn.Module[B]
} {
	return []struct {
		name   string
		module nn.Module[B]
	}{
		{"conv01", m.conv01}, {"conv02", m.conv02},
		{"conv11", m.conv11}, {"conv12", m.conv12},
		{"conv21", m.conv21}, {"conv22", m.conv22},
		{"conv13", m.conv13}, {"conv14", m.conv14},
		{"conv15", m.conv15}, {"conv16", m.conv16},
		{"conv03", m.conv03}, {"conv04", m.conv04},
		{"conv05", m.conv05}, {"conv06", m.conv06},
	}
}

// Parameters returns all trainable parameters of the network.
func (m *GEMGCN[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for _, b := range m.blocks() {
		params = append(params, b.module.Parameters()...)
	}
	return params
}

// CountParameters returns the number of trainable scalar values.
func (m *GEMGCN[B]) CountParameters() int {
	return nn.CountParameters[B](m)
}

// ParameterTable returns a tabular parameter summary.
func (m *GEMGCN[B]) ParameterTable() string {
	return nn.ParameterTable[B](m)
}

// StateDict returns all parameters namespaced by block name.
func (m *GEMGCN[B]) StateDict() map[string]*tensor.RawTensor {
	sd := make(map[string]*tensor.RawTensor)
	for _, b := range m.blocks() {
		for name, raw := range b.module.StateDict() {
			sd[b.name+"."+name] = raw
		}
	}
	return sd
}

// LoadStateDict loads parameters namespaced by block name.
func (m *GEMGCN[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for _, b := range m.blocks() {
		child := make(map[string]*tensor.RawTensor)
		prefix := b.name + "."
		for name, raw := range stateDict {
			if len(name) > len(prefix) && name[:len(prefix)] == prefix {
				child[name[len(prefix):]] = raw
			}
		}
		if err := b.module.LoadStateDict(child); err != nil {
			return fmt.Errorf("failed to load %s: %w", b.name, err)
		}
	}
	return nil
}
