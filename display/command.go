package display

import (
	"github.com/pixelbridge/nddi/coeff"
	"github.com/pixelbridge/nddi/pixel"
)

// Tag identifies one of the fixed, stable set of command kinds making up
// the nDDI command surface (spec.md §4.2, §6). Tag 0 is reserved as the
// idEOT log terminator (spec.md §6 Log format).
type Tag uint32

// The 23 command kinds of the wire protocol table in spec.md §6, plus the
// reserved EOT terminator.
const (
	TagEOT Tag = iota
	TagInit
	TagDisplayWidth
	TagDisplayHeight
	TagNumCoefficientPlanes
	TagPutPixel
	TagCopyPixelStrip
	TagCopyPixels
	TagCopyPixelTiles
	TagFillPixel
	TagCopyFrameVolume
	TagUpdateInputVector
	TagPutCoefficientMatrix
	TagFillCoefficientMatrix
	TagFillCoefficient
	TagFillCoefficientTiles
	TagFillScaler
	TagFillScalerTiles
	TagFillScalerTileStack
	TagSetPixelByteSignMode
	TagSetFullScaler
	TagGetFullScaler
	TagLatch
	TagShutdown
)

// names is used by (Tag).String for diagnostics and log dumps.
var names = map[Tag]string{
	TagEOT:                     "EOT",
	TagInit:                    "Initialize",
	TagDisplayWidth:            "DisplayWidth",
	TagDisplayHeight:           "DisplayHeight",
	TagNumCoefficientPlanes:    "NumCoefficientPlanes",
	TagPutPixel:                "PutPixel",
	TagCopyPixelStrip:          "CopyPixelStrip",
	TagCopyPixels:              "CopyPixels",
	TagCopyPixelTiles:          "CopyPixelTiles",
	TagFillPixel:               "FillPixel",
	TagCopyFrameVolume:         "CopyFrameVolume",
	TagUpdateInputVector:       "UpdateInputVector",
	TagPutCoefficientMatrix:    "PutCoefficientMatrix",
	TagFillCoefficientMatrix:   "FillCoefficientMatrix",
	TagFillCoefficient:         "FillCoefficient",
	TagFillCoefficientTiles:    "FillCoefficientTiles",
	TagFillScaler:              "FillScaler",
	TagFillScalerTiles:         "FillScalerTiles",
	TagFillScalerTileStack:     "FillScalerTileStack",
	TagSetPixelByteSignMode:    "SetPixelByteSignMode",
	TagSetFullScaler:           "SetFullScaler",
	TagGetFullScaler:           "GetFullScaler",
	TagLatch:                   "Latch",
	TagShutdown:                "Shutdown",
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "Unknown"
}

// Command is an immutable, tagged record carrying only its parameters (no
// pointers into caller memory), per spec.md §4.2. Apply executes it
// against a live Display and returns a reply value: nil for a bare status,
// an int for width/height/plane-count queries, an int32 for the full-scaler
// query, or a Frame for Latch.
type Command interface {
	Tag() Tag
	Apply(d *Display) (interface{}, error)
}

// Init is the Initialize command (wire id 1): it does not act on an
// existing Display; the caller (transport/recorder) uses it to construct
// one via New.
type Init struct {
	Config Config
}

func (Init) Tag() Tag { return TagInit }

// Apply always errors: Init targets construction, not an existing Display.
// Callers must special-case TagInit before dispatching to Apply.
func (c Init) Apply(d *Display) (interface{}, error) {
	return nil, errNotApplicable
}

var errNotApplicable = &initError{}

type initError struct{}

func (*initError) Error() string {
	return "display: Init must be handled by the caller, not Apply"
}

// DisplayWidthCmd is the DisplayWidth query (wire id 2).
type DisplayWidthCmd struct{}

func (DisplayWidthCmd) Tag() Tag { return TagDisplayWidth }
func (DisplayWidthCmd) Apply(d *Display) (interface{}, error) {
	w, err := d.DisplayWidth()
	return w, err
}

// DisplayHeightCmd is the DisplayHeight query (wire id 3).
type DisplayHeightCmd struct{}

func (DisplayHeightCmd) Tag() Tag { return TagDisplayHeight }
func (DisplayHeightCmd) Apply(d *Display) (interface{}, error) {
	h, err := d.DisplayHeight()
	return h, err
}

// NumCoefficientPlanesCmd is the NumCoefficientPlanes query (wire id 4).
type NumCoefficientPlanesCmd struct{}

func (NumCoefficientPlanesCmd) Tag() Tag { return TagNumCoefficientPlanes }
func (NumCoefficientPlanesCmd) Apply(d *Display) (interface{}, error) {
	p, err := d.NumCoefficientPlanes()
	return p, err
}

// PutPixelCmd is PutPixel (wire id 5).
type PutPixelCmd struct {
	Pixel pixel.Pixel
	Loc   []int
}

func (PutPixelCmd) Tag() Tag { return TagPutPixel }
func (c PutPixelCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.PutPixel(c.Pixel, c.Loc)
}

// CopyPixelStripCmd is CopyPixelStrip (wire id 6).
type CopyPixelStripCmd struct {
	Pixels     []pixel.Pixel
	Start, End []int
}

func (CopyPixelStripCmd) Tag() Tag { return TagCopyPixelStrip }
func (c CopyPixelStripCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.CopyPixelStrip(c.Pixels, c.Start, c.End)
}

// CopyPixelsCmd is CopyPixels (wire id 7).
type CopyPixelsCmd struct {
	Pixels     []pixel.Pixel
	Start, End []int
}

func (CopyPixelsCmd) Tag() Tag { return TagCopyPixels }
func (c CopyPixelsCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.CopyPixels(c.Pixels, c.Start, c.End)
}

// CopyPixelTilesCmd is CopyPixelTiles (wire id 8).
type CopyPixelTilesCmd struct {
	Tiles  [][]pixel.Pixel
	Starts [][]int
	Size   [2]int
}

func (CopyPixelTilesCmd) Tag() Tag { return TagCopyPixelTiles }
func (c CopyPixelTilesCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.CopyPixelTiles(c.Tiles, c.Starts, c.Size)
}

// FillPixelCmd is FillPixel (wire id 9).
type FillPixelCmd struct {
	Pixel      pixel.Pixel
	Start, End []int
}

func (FillPixelCmd) Tag() Tag { return TagFillPixel }
func (c FillPixelCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillPixel(c.Pixel, c.Start, c.End)
}

// CopyFrameVolumeCmd is CopyFrameVolume (wire id 10).
type CopyFrameVolumeCmd struct {
	Start, End []int
	Dest       []int
}

func (CopyFrameVolumeCmd) Tag() Tag { return TagCopyFrameVolume }
func (c CopyFrameVolumeCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.CopyFrameVolume(c.Start, c.End, c.Dest)
}

// UpdateInputVectorCmd is UpdateInputVector (wire id 11).
type UpdateInputVectorCmd struct {
	Values []int64
}

func (UpdateInputVectorCmd) Tag() Tag { return TagUpdateInputVector }
func (c UpdateInputVectorCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.UpdateInputVector(c.Values)
}

// PutCoefficientMatrixCmd is PutCoefficientMatrix (wire id 12).
type PutCoefficientMatrixCmd struct {
	Values []coeff.Value
	Loc    []int
}

func (PutCoefficientMatrixCmd) Tag() Tag { return TagPutCoefficientMatrix }
func (c PutCoefficientMatrixCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.PutCoefficientMatrix(c.Values, c.Loc)
}

// FillCoefficientMatrixCmd is FillCoefficientMatrix (wire id 13).
type FillCoefficientMatrixCmd struct {
	Values     []coeff.Value
	Start, End []int
}

func (FillCoefficientMatrixCmd) Tag() Tag { return TagFillCoefficientMatrix }
func (c FillCoefficientMatrixCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillCoefficientMatrix(c.Values, c.Start, c.End)
}

// FillCoefficientCmd is FillCoefficient (wire id 14).
type FillCoefficientCmd struct {
	Value      coeff.Value
	Row, Col   int
	Start, End []int
}

func (FillCoefficientCmd) Tag() Tag { return TagFillCoefficient }
func (c FillCoefficientCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillCoefficient(c.Value, c.Row, c.Col, c.Start, c.End)
}

// FillCoefficientTilesCmd is FillCoefficientTiles (wire id 15).
type FillCoefficientTilesCmd struct {
	Coeffs    []coeff.Value
	Positions [][2]int
	Starts    [][]int
	Size      [2]int
}

func (FillCoefficientTilesCmd) Tag() Tag { return TagFillCoefficientTiles }
func (c FillCoefficientTilesCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillCoefficientTiles(c.Coeffs, c.Positions, c.Starts, c.Size)
}

// FillScalerCmd is FillScaler (wire id 16).
type FillScalerCmd struct {
	Scaler     pixel.Scaler
	Start, End []int
}

func (FillScalerCmd) Tag() Tag { return TagFillScaler }
func (c FillScalerCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillScaler(c.Scaler, c.Start, c.End)
}

// FillScalerTilesCmd is FillScalerTiles (wire id 17).
type FillScalerTilesCmd struct {
	Scalers []pixel.Scaler
	Starts  [][]int
	Size    [2]int
}

func (FillScalerTilesCmd) Tag() Tag { return TagFillScalerTiles }
func (c FillScalerTilesCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillScalerTiles(c.Scalers, c.Starts, c.Size)
}

// FillScalerTileStackCmd is FillScalerTileStack (wire id 18).
type FillScalerTileStackCmd struct {
	Scalers []pixel.Scaler
	Start   []int
	Size    [2]int
}

func (FillScalerTileStackCmd) Tag() Tag { return TagFillScalerTileStack }
func (c FillScalerTileStackCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.FillScalerTileStack(c.Scalers, c.Start, c.Size)
}

// SetPixelByteSignModeCmd is SetPixelByteSignMode (wire id 19).
type SetPixelByteSignModeCmd struct {
	Mode pixel.SignMode
}

func (SetPixelByteSignModeCmd) Tag() Tag { return TagSetPixelByteSignMode }
func (c SetPixelByteSignModeCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.SetPixelByteSignMode(c.Mode)
}

// SetFullScalerCmd is SetFullScaler (wire id 20).
type SetFullScalerCmd struct {
	Value int32
}

func (SetFullScalerCmd) Tag() Tag { return TagSetFullScaler }
func (c SetFullScalerCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.SetFullScaler(c.Value)
}

// GetFullScalerCmd is GetFullScaler (wire id 21).
type GetFullScalerCmd struct{}

func (GetFullScalerCmd) Tag() Tag { return TagGetFullScaler }
func (GetFullScalerCmd) Apply(d *Display) (interface{}, error) {
	v, err := d.GetFullScaler()
	return v, err
}

// LatchCmd is Latch (wire id 22).
type LatchCmd struct {
	SubX, SubY, SubW, SubH int
}

func (LatchCmd) Tag() Tag { return TagLatch }
func (c LatchCmd) Apply(d *Display) (interface{}, error) {
	f, err := d.Latch(c.SubX, c.SubY, c.SubW, c.SubH)
	return f, err
}

// ShutdownCmd is Shutdown (wire id 23).
type ShutdownCmd struct{}

func (ShutdownCmd) Tag() Tag { return TagShutdown }
func (ShutdownCmd) Apply(d *Display) (interface{}, error) {
	return nil, d.Shutdown()
}
