package nebula

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the engine. Durations are milliseconds,
// sizes expressed as fractions are relative to min(width, height).
type Config struct {
	// Canvas
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Seed   int64   `json:"seed"` // 0 picks a time based seed

	// Lifecycle
	NumBlobs                   int     `json:"numBlobs"`
	FormsPerBlob               int     `json:"formsPerBlob"`
	MaxFormStepPerFrame        int     `json:"maxFormStepPerFrame"`
	SnapFirstSlot              bool    `json:"snapFirstSlot"`
	AssembleMs                 float64 `json:"assembleMs"`
	SustainMs                  float64 `json:"sustainMs"`
	FadeMs                     float64 `json:"fadeMs"`
	SpawnIntervalMs            float64 `json:"spawnIntervalMs"`
	FreezeLifeDuringTransition bool    `json:"freezeLifeDuringTransition"`
	BlobRadiusMin              float64 `json:"blobRadiusMin"`
	BlobRadiusMax              float64 `json:"blobRadiusMax"`
	ManualRadiusMin            float64 `json:"manualRadiusMin"`
	ManualRadiusMax            float64 `json:"manualRadiusMax"`
	FormSidesMin               int     `json:"formSidesMin"`
	FormSidesMax               int     `json:"formSidesMax"`
	FormDepth                  int     `json:"formDepth"`
	FormVariance               float64 `json:"formVariance"`
	FormOpacity                float64 `json:"formOpacity"`

	// Placement
	PlacementAttempts      int     `json:"placementAttempts"`
	PlacementMarginFactor  float64 `json:"placementMarginFactor"`
	SameHueSepFactor       float64 `json:"sameHueSepFactor"`
	ComplementarySepFactor float64 `json:"complementarySepFactor"`
	BaseSepFactor          float64 `json:"baseSepFactor"`
	SameHueThreshold       float64 `json:"sameHueThreshold"`
	ComplementaryMin       float64 `json:"complementaryMin"`
	ComplementaryMax       float64 `json:"complementaryMax"`
	RecentHueMemory        int     `json:"recentHueMemory"`
	MinHueSpacing          float64 `json:"minHueSpacing"`
	HueAttempts            int     `json:"hueAttempts"`

	// Gesture
	MinPointSpacing       float64 `json:"minPointSpacing"`
	MinAnalysisPoints     int     `json:"minAnalysisPoints"`
	MinAnalysisMs         float64 `json:"minAnalysisMs"`
	RecentWindow          int     `json:"recentWindow"`
	PredictionStride      int     `json:"predictionStride"`
	CrossDeadZone         float64 `json:"crossDeadZone"`
	MaxConfidence         int     `json:"maxConfidence"`
	LoopConsistency       float64 `json:"loopConsistency"`
	LoopMinAngleDeg       float64 `json:"loopMinAngleDeg"`
	InfinityFlipThreshold int     `json:"infinityFlipThreshold"`
	InfinityImpulse       float64 `json:"infinityImpulse"`
	MaxTargetRotation     float64 `json:"maxTargetRotation"`
	LinearMinDistance     float64 `json:"linearMinDistance"`
	LongPressMs           float64 `json:"longPressMs"`
	LongPressRadius       float64 `json:"longPressRadius"`
	GrayscaleHoldMs       float64 `json:"grayscaleHoldMs"`

	// Physics
	MaxDtMs              float64 `json:"maxDtMs"`
	CenterGravity        float64 `json:"centerGravity"`
	GravityMinDist       float64 `json:"gravityMinDist"`
	OrbitalTangent       float64 `json:"orbitalTangent"`
	BaseOrbitalVelocity  float64 `json:"baseOrbitalVelocity"`
	OrbitalIdleMs        float64 `json:"orbitalIdleMs"`
	WanderStrength       float64 `json:"wanderStrength"`
	Damping              float64 `json:"damping"`
	MaxSpeed             float64 `json:"maxSpeed"`
	BounceMargin         float64 `json:"bounceMargin"`
	BounceRestitution    float64 `json:"bounceRestitution"`
	MutualAttract        float64 `json:"mutualAttract"`
	MutualRepel          float64 `json:"mutualRepel"`
	MutualRepelRadius    float64 `json:"mutualRepelRadius"`
	GravityVelocityDecay float64 `json:"gravityVelocityDecay"`
	PointerRepel         float64 `json:"pointerRepel"`
	RotationIdleMs       float64 `json:"rotationIdleMs"`
	RotationSpringFreq   float64 `json:"rotationSpringFreq"`
	DriftSpringFreq      float64 `json:"driftSpringFreq"`
	MaxBaseSpinDeg       float64 `json:"maxBaseSpinDeg"`

	// Modes and color
	StartMode           string  `json:"startMode"`
	ModeMinMs           float64 `json:"modeMinMs"`
	ModeMaxMs           float64 `json:"modeMaxMs"`
	ModeTransitionMs    float64 `json:"modeTransitionMs"`
	CrossfadeLow        float64 `json:"crossfadeLow"`
	CrossfadeHigh       float64 `json:"crossfadeHigh"`
	MinColorChangeMs    float64 `json:"minColorChangeMs"`
	HueRotationPeriodMs float64 `json:"hueRotationPeriodMs"`
	AutoGrayscale       bool    `json:"autoGrayscale"`
	GrayscaleMinEveryMs float64 `json:"grayscaleMinEveryMs"`
	GrayscaleMaxEveryMs float64 `json:"grayscaleMaxEveryMs"`
	GrayscaleDurationMs float64 `json:"grayscaleDurationMs"`
	ErrorIndicatorMs    float64 `json:"errorIndicatorMs"`
	ErrorLogPerSecond   float64 `json:"errorLogPerSecond"`
	ShowPanel           bool    `json:"showPanel"`
	ShowStats           bool    `json:"showStats"`
}

func DefaultConfig() *Config {
	return &Config{
		Width:  1280,
		Height: 800,

		NumBlobs:                   8,
		FormsPerBlob:               150,
		MaxFormStepPerFrame:        3,
		SnapFirstSlot:              true,
		AssembleMs:                 4000,
		SustainMs:                  14000,
		FadeMs:                     5000,
		SpawnIntervalMs:            3000,
		FreezeLifeDuringTransition: true,
		BlobRadiusMin:              0.18,
		BlobRadiusMax:              0.40,
		ManualRadiusMin:            0.15,
		ManualRadiusMax:            0.50,
		FormSidesMin:               3,
		FormSidesMax:               8,
		FormDepth:                  3,
		FormVariance:               0.5,
		FormOpacity:                0.04,

		PlacementAttempts:      20,
		PlacementMarginFactor:  0.25,
		SameHueSepFactor:       0.65,
		ComplementarySepFactor: 0.60,
		BaseSepFactor:          0.45,
		SameHueThreshold:       25,
		ComplementaryMin:       140,
		ComplementaryMax:       220,
		RecentHueMemory:        7,
		MinHueSpacing:          50,
		HueAttempts:            15,

		MinPointSpacing:       8,
		MinAnalysisPoints:     10,
		MinAnalysisMs:         150,
		RecentWindow:          30,
		PredictionStride:      3,
		CrossDeadZone:         5,
		MaxConfidence:         10,
		LoopConsistency:       0.6,
		LoopMinAngleDeg:       45,
		InfinityFlipThreshold: 3,
		InfinityImpulse:       3,
		MaxTargetRotation:     120,
		LinearMinDistance:     20,
		LongPressMs:           500,
		LongPressRadius:       30,
		GrayscaleHoldMs:       5000,

		MaxDtMs:              100,
		CenterGravity:        0.00001,
		GravityMinDist:       50,
		OrbitalTangent:       0.1,
		BaseOrbitalVelocity:  0.001,
		OrbitalIdleMs:        3000,
		WanderStrength:       0.015,
		Damping:              0.9998,
		MaxSpeed:             6,
		BounceMargin:         0.2,
		BounceRestitution:    0.6,
		MutualAttract:        0.05,
		MutualRepel:          0.05,
		MutualRepelRadius:    0.35,
		GravityVelocityDecay: 0.96,
		PointerRepel:         0.02,
		RotationIdleMs:       5000,
		RotationSpringFreq:   6,
		DriftSpringFreq:      3,
		MaxBaseSpinDeg:       15,

		StartMode:           BlackMulti.String(),
		ModeMinMs:           10000,
		ModeMaxMs:           20000,
		ModeTransitionMs:    3000,
		CrossfadeLow:        0.40,
		CrossfadeHigh:       0.60,
		MinColorChangeMs:    6000,
		HueRotationPeriodMs: 60000,
		AutoGrayscale:       true,
		GrayscaleMinEveryMs: 15000,
		GrayscaleMaxEveryMs: 35000,
		GrayscaleDurationMs: 8000,
		ErrorIndicatorMs:    3000,
		ErrorLogPerSecond:   1,
		ShowPanel:           false,
		ShowStats:           true,
	}
}

// TotalLifeMs is the length of one assemble, sustain and fade envelope.
func (c *Config) TotalLifeMs() float64 {
	return c.AssembleMs + c.SustainMs + c.FadeMs
}

// LoadConfig loads configuration from a JSON or YAML file and validates it against the schema.
// Keys missing from the file keep their DefaultConfig value.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	sch, err := jsonschema.Compile(schemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	// 3. YAML documents are converted to JSON so one schema serves both formats
	if ext := strings.ToLower(filepath.Ext(configFile)); ext == ".yaml" || ext == ".yml" {
		b, err = yamlToJSON(b)
		if err != nil {
			return nil, fmt.Errorf("failed to decode config yaml: %w", err)
		}
	}

	// 4. Validate
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 5. Unmarshal over the defaults
	cfg := DefaultConfig()
	if err := json.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func yamlToJSON(b []byte) ([]byte, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = map[string]interface{}{}
	}
	return json.Marshal(doc)
}

// Validate checks the cross-field rules a JSON schema cannot express.
func (c *Config) Validate() error {
	switch {
	case c.ModeMaxMs < c.ModeMinMs:
		return fmt.Errorf("modeMaxMs (%v) must be >= modeMinMs (%v)", c.ModeMaxMs, c.ModeMinMs)
	case c.BlobRadiusMax < c.BlobRadiusMin:
		return fmt.Errorf("blobRadiusMax (%v) must be >= blobRadiusMin (%v)", c.BlobRadiusMax, c.BlobRadiusMin)
	case c.ManualRadiusMax < c.ManualRadiusMin:
		return fmt.Errorf("manualRadiusMax (%v) must be >= manualRadiusMin (%v)", c.ManualRadiusMax, c.ManualRadiusMin)
	case c.FormSidesMax < c.FormSidesMin:
		return fmt.Errorf("formSidesMax (%d) must be >= formSidesMin (%d)", c.FormSidesMax, c.FormSidesMin)
	case c.CrossfadeHigh < c.CrossfadeLow:
		return fmt.Errorf("crossfadeHigh (%v) must be >= crossfadeLow (%v)", c.CrossfadeHigh, c.CrossfadeLow)
	case c.GrayscaleMaxEveryMs < c.GrayscaleMinEveryMs:
		return fmt.Errorf("grayscaleMaxEveryMs (%v) must be >= grayscaleMinEveryMs (%v)", c.GrayscaleMaxEveryMs, c.GrayscaleMinEveryMs)
	}
	if _, err := ParseMode(c.StartMode); err != nil {
		return err
	}
	return nil
}
