package hdr

// ToneMapParams carries exactly the inputs one operator needs. The concrete
// type determines the operator; there are no fields that only some modes read.
type ToneMapParams interface {
	Operator() ToneMapOperator
	exposure() float32
}

type NoneParams struct{}

type ReinhardParams struct {
	Exposure float32
}

type ExponentialParams struct {
	Exposure float32
}

// DragoParams adds the frame's peak and average (world adaptation) luminance.
type DragoParams struct {
	Exposure     float32
	MaxLuminance float32
	AvgLuminance float32
}

func (NoneParams) Operator() ToneMapOperator        { return OperatorNone }
func (ReinhardParams) Operator() ToneMapOperator    { return OperatorReinhard }
func (ExponentialParams) Operator() ToneMapOperator { return OperatorExponential }
func (DragoParams) Operator() ToneMapOperator       { return OperatorDrago }

func (NoneParams) exposure() float32          { return 1 }
func (p ReinhardParams) exposure() float32    { return p.Exposure }
func (p ExponentialParams) exposure() float32 { return p.Exposure }
func (p DragoParams) exposure() float32       { return p.Exposure }

// ParamsExposure returns the exposure a backend should upload for p.
func ParamsExposure(p ToneMapParams) float32 {
	return p.exposure()
}
