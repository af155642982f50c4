package memorize

import (
	"reflect"
	"runtime"
	"sync"
	"unsafe"
	"weak"
)

// wrapperNames remembers what each memoized wrapper stands for, keyed by the
// address of the wrapper's closure. Entries go away with their wrapper.
var wrapperNames = struct {
	mu     sync.Mutex
	byAddr map[uintptr]wrapperName
}{byAddr: map[uintptr]wrapperName{}}

type wrapperName struct {
	ref  weak.Pointer[byte]
	name string
}

// named records name for the wrapper fn and returns fn.
func named[F any](name string, fn F) F {
	ptr := (*byte)(funcData(fn))
	if ptr == nil {
		return fn
	}
	addr := uintptr(unsafe.Pointer(ptr))
	if runtime.AddCleanup(ptr, forgetName, addr) == (runtime.Cleanup{}) {
		return fn
	}
	wrapperNames.mu.Lock()
	wrapperNames.byAddr[addr] = wrapperName{ref: weak.Make(ptr), name: name}
	wrapperNames.mu.Unlock()
	return fn
}

func forgetName(addr uintptr) {
	wrapperNames.mu.Lock()
	defer wrapperNames.mu.Unlock()
	// the address may already belong to a newer wrapper
	if n, ok := wrapperNames.byAddr[addr]; ok && n.ref.Value() == nil {
		delete(wrapperNames.byAddr, addr)
	}
}

func wrapperNameOf(fn any) (string, bool) {
	ptr := (*byte)(funcData(fn))
	if ptr == nil {
		return "", false
	}
	wrapperNames.mu.Lock()
	defer wrapperNames.mu.Unlock()
	n, ok := wrapperNames.byAddr[uintptr(unsafe.Pointer(ptr))]
	if !ok || n.ref.Value() != ptr {
		return "", false
	}
	return n.name, true
}

// funcData returns the closure object behind a func value.
func funcData(fn any) unsafe.Pointer {
	if reflect.TypeOf(fn).Kind() != reflect.Func {
		return nil
	}
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&fn))[1]
}

// NameOf returns the name of a function: the name a memoized wrapper was
// given, or the runtime symbol name of anything else. It is "" for values
// that are not functions.
func NameOf(fn any) string {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return ""
	}
	if name, ok := wrapperNameOf(fn); ok {
		return name
	}
	if f := runtime.FuncForPC(rv.Pointer()); f != nil {
		return f.Name()
	}
	return ""
}
