package loader

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"github.com/zeusync/posekit/internal/core/clip"
	"github.com/zeusync/posekit/internal/core/keyframe"
	"github.com/zeusync/posekit/internal/core/observability/log"
	"gopkg.in/yaml.v3"
)

// Clip files are YAML documents; JSON files parse as well since JSON is a
// subset of YAML.
type clipFile struct {
	Length float32                         `yaml:"length"`
	Parts  map[string]map[string][]keyFile `yaml:"parts"`
}

type keyFile struct {
	Time          float32            `yaml:"time"`
	Transform     *[3]float32        `yaml:"transform,omitempty,flow"`
	Pre           *[3]float32        `yaml:"pre,omitempty,flow"`
	Post          *[3]float32        `yaml:"post,omitempty,flow"`
	Interpolation *interpolationFile `yaml:"interpolation,omitempty"`
}

type interpolationFile struct {
	Type   string `yaml:"type,omitempty"`
	Easing string `yaml:"easing,omitempty"`
}

// Parser turns clip files into clips, resolving interpolator names through
// its registries. A Parser is safe for concurrent use.
type Parser struct {
	algorithms *keyframe.AlgorithmRegistry
	easings    *keyframe.EasingRegistry
	log        log.Log
}

func NewParser(algorithms *keyframe.AlgorithmRegistry, easings *keyframe.EasingRegistry, logger log.Log) *Parser {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Parser{algorithms: algorithms, easings: easings, log: logger}
}

// Parse decodes one clip file. Syntax errors fail the whole file; a bad
// keyframe or channel is logged and skipped.
func (p *Parser) Parse(name string, data []byte) (*clip.Clip, error) {
	var f clipFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedClip, name, err)
	}
	if l := float64(f.Length); l < 0 || math.IsNaN(l) || math.IsInf(l, 0) {
		return nil, fmt.Errorf("%w: %s: bad length %v", ErrMalformedClip, name, f.Length)
	}

	logger := p.log.With(log.String("file", name))
	tracks := make(map[string]*clip.PartTrack, len(f.Parts))
	var last float32
	for part, channels := range f.Parts {
		pt := &clip.PartTrack{}
		for chName, keys := range channels {
			ch, ok := clip.ParseChannel(chName)
			if !ok {
				logger.Warn("skipping channel", log.String("part", part),
					log.Error(fmt.Errorf("%w: %q", ErrUnknownChannel, chName)))
				continue
			}
			track := make([]keyframe.Keyframe, 0, len(keys))
			for i, kf := range keys {
				k, err := p.keyframe(kf)
				if err != nil {
					logger.Warn("skipping keyframe", log.String("part", part),
						log.Stringer("channel", ch), log.Int("index", i), log.Error(err))
					continue
				}
				track = append(track, k)
			}
			sort.SliceStable(track, func(a, b int) bool { return track[a].Time < track[b].Time })
			if n := len(track); n > 0 && track[n-1].Time > last {
				last = track[n-1].Time
			}
			pt.Channels[ch] = track
		}
		tracks[part] = pt
	}

	length := f.Length
	if length == 0 {
		length = last
	}
	return clip.New(length, tracks), nil
}

func (p *Parser) keyframe(kf keyFile) (keyframe.Keyframe, error) {
	var k keyframe.Keyframe
	if t := float64(kf.Time); math.IsNaN(t) || math.IsInf(t, 0) {
		return k, fmt.Errorf("%w: %v", ErrInvalidTime, kf.Time)
	}
	k.Time = kf.Time
	switch {
	case kf.Transform != nil:
		k.Pre, k.Post = *kf.Transform, *kf.Transform
	case kf.Pre != nil && kf.Post != nil:
		k.Pre, k.Post = *kf.Pre, *kf.Post
	case kf.Pre != nil:
		k.Pre, k.Post = *kf.Pre, *kf.Pre
	case kf.Post != nil:
		k.Pre, k.Post = *kf.Post, *kf.Post
	default:
		return k, ErrEmptyKeyframe
	}

	var algorithm, easing string
	if kf.Interpolation != nil {
		algorithm, easing = kf.Interpolation.Type, kf.Interpolation.Easing
	}
	ip, err := keyframe.ResolveInterpolator(p.algorithms, p.easings, algorithm, easing)
	if err != nil {
		return k, err
	}
	k.Interpolator = ip
	return k, nil
}

// Encode writes c in the clip file format. Continuous keyframes use the
// single transform form, discontinuous ones the pre/post form.
func Encode(c *clip.Clip) ([]byte, error) {
	f := clipFile{
		Length: c.Length(),
		Parts:  make(map[string]map[string][]keyFile),
	}
	c.Each(func(part string, pt *clip.PartTrack) {
		channels := make(map[string][]keyFile)
		for _, ch := range clip.Channels {
			keys := pt.Track(ch)
			if len(keys) == 0 {
				continue
			}
			out := make([]keyFile, len(keys))
			for i, k := range keys {
				out[i] = encodeKeyframe(k)
			}
			channels[ch.String()] = out
		}
		f.Parts[part] = channels
	})
	return yaml.Marshal(&f)
}

func encodeKeyframe(k keyframe.Keyframe) keyFile {
	kf := keyFile{Time: k.Time}
	pre, post := [3]float32(k.Pre), [3]float32(k.Post)
	if k.Continuous() {
		kf.Transform = &pre
	} else {
		kf.Pre, kf.Post = &pre, &post
	}
	alg, ease := k.Interpolator.AlgorithmName, k.Interpolator.EasingName
	if alg == keyframe.AlgorithmLinear {
		alg = ""
	}
	if ease == keyframe.EasingLinear {
		ease = ""
	}
	if alg != "" || ease != "" {
		kf.Interpolation = &interpolationFile{Type: alg, Easing: ease}
	}
	return kf
}
