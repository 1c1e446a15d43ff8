package liveset

import "strings"

// Category classifies what a device does.
type Category string

const (
	CategoryEqualizer      Category = "equalizer"
	CategoryCompressor     Category = "compressor"
	CategoryLimiter        Category = "limiter"
	CategoryReverb         Category = "reverb"
	CategoryDelay          Category = "delay"
	CategorySaturation     Category = "saturation"
	CategoryFilter         Category = "filter"
	CategoryModulation     Category = "modulation"
	CategoryGate           Category = "gate"
	CategoryUtility        Category = "utility"
	CategoryAnalyzer       Category = "analyzer"
	CategoryInstrument     Category = "instrument"
	CategoryMIDIEffect     Category = "midi_effect"
	CategoryRack           Category = "rack"
	CategoryExternalPlugin Category = "external_plugin"
	CategoryUnknown        Category = "unknown"
)

// IsProcessing reports whether the category transforms audio in the chain,
// as opposed to generating, routing, metering or transforming MIDI.
func (c Category) IsProcessing() bool {
	switch c {
	case CategoryEqualizer, CategoryCompressor, CategoryLimiter, CategoryReverb,
		CategoryDelay, CategorySaturation, CategoryFilter, CategoryModulation, CategoryGate:
		return true
	}
	return false
}

type deviceSpec struct {
	category Category
	params   []string
}

// deviceTable maps native device tags to their category and the parameters
// worth extracting.
var deviceTable = map[string]deviceSpec{
	"Eq8":               {CategoryEqualizer, []string{"GlobalGain", "Scale", "AdaptiveQ"}},
	"FilterEQ3":         {CategoryEqualizer, []string{"GainLo", "GainMid", "GainHi", "FreqLo", "FreqHi"}},
	"ChannelEq":         {CategoryEqualizer, []string{"LowShelfGain", "MidGain", "MidFrequency", "HighShelfGain", "HighpassOn", "Gain"}},
	"Compressor2":       {CategoryCompressor, []string{"Threshold", "Ratio", "Attack", "Release", "Gain", "DryWet"}},
	"GlueCompressor":    {CategoryCompressor, []string{"Threshold", "Ratio", "Attack", "Release", "Makeup", "DryWet"}},
	"MultibandDynamics": {CategoryCompressor, []string{"GlobalGain", "TimeScaling", "OutputGain"}},
	"Limiter":           {CategoryLimiter, []string{"Ceiling", "Gain", "Release", "AutoRelease", "Lookahead"}},
	"Reverb":            {CategoryReverb, []string{"DecayTime", "PreDelay", "RoomSize", "MixDirect"}},
	"Hybrid":            {CategoryReverb, []string{"Decay", "DryWet"}},
	"Delay":             {CategoryDelay, []string{"DelayLine_TimeL", "Feedback", "DryWet"}},
	"PingPongDelay":     {CategoryDelay, []string{"DelayTime", "Feedback", "DryWet"}},
	"FilterDelay":       {CategoryDelay, []string{"DryWet"}},
	"Echo":              {CategoryDelay, []string{"Feedback", "DryWet"}},
	"Saturator":         {CategorySaturation, []string{"PreDrive", "PostDrive", "Type", "DryWet"}},
	"Overdrive":         {CategorySaturation, []string{"Drive", "DryWet"}},
	"DrumBuss":          {CategorySaturation, []string{"Drive", "Crunch", "DryWet"}},
	"Pedal":             {CategorySaturation, []string{"Gain", "DryWet"}},
	"Amp":               {CategorySaturation, []string{"Gain", "DryWet"}},
	"Redux2":            {CategorySaturation, []string{"BitDepth", "DryWet"}},
	"AutoFilter":        {CategoryFilter, []string{"Cutoff", "Resonance", "LfoAmount"}},
	"AutoFilter2":       {CategoryFilter, []string{"Cutoff", "Resonance", "LfoAmount"}},
	"Chorus2":           {CategoryModulation, []string{"Amount", "DryWet"}},
	"PhaserNew":         {CategoryModulation, []string{"Amount", "DryWet"}},
	"AutoPan":           {CategoryModulation, []string{"LfoAmount"}},
	"Gate":              {CategoryGate, []string{"Threshold", "Return", "Attack", "Release"}},
	"StereoGain":        {CategoryUtility, []string{"Gain", "StereoWidth", "Mono", "BassMono", "Mute"}},
	"SpectrumAnalyzer":  {CategoryAnalyzer, nil},
	"Tuner":             {CategoryAnalyzer, nil},

	"OriginalSimpler":   {CategoryInstrument, []string{"Volume"}},
	"MultiSampler":      {CategoryInstrument, []string{"Volume"}},
	"Operator":          {CategoryInstrument, []string{"Volume"}},
	"InstrumentVector":  {CategoryInstrument, []string{"Volume"}},
	"Drift":             {CategoryInstrument, []string{"Volume"}},
	"UltraAnalog":       {CategoryInstrument, []string{"Volume"}},
	"Collision":         {CategoryInstrument, []string{"Volume"}},
	"LoungeLizard":      {CategoryInstrument, []string{"Volume"}},
	"StringStudio":      {CategoryInstrument, []string{"Volume"}},
	"InstrumentImpulse": {CategoryInstrument, []string{"GlobalVolume"}},

	"AudioEffectGroupDevice": {CategoryRack, nil},
	"InstrumentGroupDevice":  {CategoryRack, nil},
	"MidiEffectGroupDevice":  {CategoryRack, nil},
	"DrumGroupDevice":        {CategoryRack, nil},

	"MidiArpeggiator": {CategoryMIDIEffect, nil},
	"MidiChord":       {CategoryMIDIEffect, nil},
	"MidiScale":       {CategoryMIDIEffect, nil},
	"MidiPitcher":     {CategoryMIDIEffect, nil},
	"MidiRandom":      {CategoryMIDIEffect, nil},
	"MidiVelocity":    {CategoryMIDIEffect, nil},
	"MidiNoteLength":  {CategoryMIDIEffect, nil},

	"PluginDevice":   {CategoryExternalPlugin, nil},
	"AuPluginDevice": {CategoryExternalPlugin, nil},
}

func isPluginTag(tag string) bool {
	return tag == "PluginDevice" || tag == "AuPluginDevice"
}

// pluginHints classify a loaded plugin by its name. Earlier entries win:
// product names first, then generic words, with the short "eq" last.
var pluginHints = []struct {
	fragment string
	category Category
}{
	{"pro-l", CategoryLimiter},
	{"pro-q", CategoryEqualizer},
	{"pro-c", CategoryCompressor},
	{"pro-r", CategoryReverb},
	{"1176", CategoryCompressor},
	{"la-2a", CategoryCompressor},
	{"limit", CategoryLimiter},
	{"maximizer", CategoryLimiter},
	{"comp", CategoryCompressor},
	{"verb", CategoryReverb},
	{"delay", CategoryDelay},
	{"echo", CategoryDelay},
	{"satur", CategorySaturation},
	{"distort", CategorySaturation},
	{"tape", CategorySaturation},
	{"gate", CategoryGate},
	{"chorus", CategoryModulation},
	{"phaser", CategoryModulation},
	{"flanger", CategoryModulation},
	{"analy", CategoryAnalyzer},
	{"meter", CategoryAnalyzer},
	{"filter", CategoryFilter},
	{"eq", CategoryEqualizer},
}

// classify resolves a device's category and the parameters to extract. The
// exact tag wins; plugin wrappers then fall back to the plugin name.
func classify(tag, pluginName string) (Category, []string) {
	spec, ok := deviceTable[tag]
	if !ok {
		return CategoryUnknown, nil
	}
	if spec.category != CategoryExternalPlugin {
		return spec.category, spec.params
	}
	if c := categoryFromName(pluginName); c != CategoryUnknown {
		return c, nil
	}
	return CategoryExternalPlugin, nil
}

func categoryFromName(name string) Category {
	lower := strings.ToLower(name)
	if lower == "" {
		return CategoryUnknown
	}
	for _, hint := range pluginHints {
		if strings.Contains(lower, hint.fragment) {
			return hint.category
		}
	}
	return CategoryUnknown
}

// ParamsFor lists the parameters extracted for a native device tag.
func ParamsFor(tag string) []string {
	return deviceTable[tag].params
}

// KnownTag reports whether tag is in the category table.
func KnownTag(tag string) bool {
	_, ok := deviceTable[tag]
	return ok
}
