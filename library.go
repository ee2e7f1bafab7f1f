package native

import (
	"os"

	"github.com/phuslu/log"
)

type (
	// LibraryNameProvider yields the next candidate to load and the policy to load it with.
	// An empty or blank name means there is no candidate.
	//
	// It is only called from the load loop of one group, so its state needs no locking.
	LibraryNameProvider func() (name string, policy LoadPolicy)
	// LibraryLoadFailureHandler decides whether the load loop tries again after a failure.
	// name is empty and err is nil when the provider had no candidate.
	// It may panic with err to propagate it to the first user of the library.
	LibraryLoadFailureHandler func(name string, policy LoadPolicy, err error) (retry bool)
	// SymbolLoadFailureHandler decides whether the remaining symbols of a group are still resolved.
	// err is nil for a blank symbol name.
	SymbolLoadFailureHandler func(symbol string, err error) (proceed bool)

	// Library is the key and the loading policy of one native library.
	//
	// Every ImportRequest pointing at the same *Library ends up in the same LibraryGroup.
	Library struct {
		Name            string                    //display name
		Names           LibraryNameProvider       //nil yields no candidate
		OnLoadFailure   LibraryLoadFailureHandler //nil aborts
		OnSymbolFailure SymbolLoadFailureHandler  //nil continues with the next symbol
		Atoms           AtomEvaluator             //nil uses Platform
		Loader          Loader                    //nil uses System
		Debug           bool                      //log each step at info level, whatever the Logger level
	}
)

// Logger is the logger of the resolver. Replace it before the first resolution.
var Logger = &log.Logger{
	Level:  log.WarnLevel,
	Writer: &log.IOWriter{Writer: os.Stderr},
}

// NewLibrary creates a library loaded from the first loadable candidate, trying them in order with DefaultPolicy.
func NewLibrary(name string, candidates ...string) *Library {
	c := NewCandidates(DefaultPolicy, candidates...)
	return &Library{
		Name:          name,
		Names:         c.Next,
		OnLoadFailure: c.Retry,
	}
}

func (l *Library) String() string {
	if l == nil {
		return "<nil>"
	}
	if l.Name == "" {
		return "<anonymous>"
	}
	return l.Name
}

func (l *Library) next() (string, LoadPolicy) {
	if l.Names == nil {
		return "", DefaultPolicy
	}
	return l.Names()
}

func (l *Library) loadFailed(name string, policy LoadPolicy, err error) bool {
	if l.OnLoadFailure == nil {
		return false
	}
	return l.OnLoadFailure(name, policy, err)
}

func (l *Library) symbolFailed(symbol string, err error) bool {
	if l.OnSymbolFailure == nil {
		return true
	}
	return l.OnSymbolFailure(symbol, err)
}

func (l *Library) atoms() AtomEvaluator {
	if l.Atoms == nil {
		return Platform
	}
	return l.Atoms
}

func (l *Library) loader() Loader {
	if l.Loader == nil {
		return System
	}
	return l.Loader
}

// trace returns an entry at info level in debug mode, written even when Logger is above info.
// Otherwise the entry is at debug level and follows Logger.
func (l *Library) trace() *log.Entry {
	if l.Debug {
		d := *Logger
		if d.Level > log.InfoLevel {
			d.Level = log.InfoLevel
		}
		return d.Info().Str("library", l.String())
	}
	return Logger.Debug().Str("library", l.String())
}
