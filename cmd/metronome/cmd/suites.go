package cmd

import (
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/thesyncim/metronome/examples/connbench"
	"github.com/thesyncim/metronome/examples/rtpbench"
	"github.com/thesyncim/metronome/pkg/metronome/suite"
)

// builtinSuites maps suite names to constructors. Construction is deferred so
// listing suites never pays for fixture setup.
func builtinSuites() map[string]func() (*suite.Suite, error) {
	return map[string]func() (*suite.Suite, error){
		"rtp":    rtpbench.RTPSuite,
		"rtcp":   rtpbench.RTCPSuite,
		"webrtc": connbench.Suite,
	}
}

func suiteNames() []string {
	var names []string
	for name := range builtinSuites() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildSuites constructs the named suites, or every built-in suite when names
// is empty. Order follows the given names, sorted for the empty case.
func buildSuites(names []string) ([]*suite.Suite, error) {
	builtin := builtinSuites()
	if len(names) == 0 {
		names = suiteNames()
	}

	suites := make([]*suite.Suite, 0, len(names))
	for _, name := range names {
		ctor, ok := builtin[name]
		if !ok {
			return nil, errors.Errorf("unknown suite %q, available: %s", name, strings.Join(suiteNames(), ", "))
		}
		s, err := ctor()
		if err != nil {
			return nil, errors.Wrapf(err, "building suite %s", name)
		}
		suites = append(suites, s)
	}
	return suites, nil
}
