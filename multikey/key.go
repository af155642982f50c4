package multikey

import (
	"errors"
	"fmt"
	"reflect"
	"unsafe"
)

var ErrUnhashableKey = errors.New("unhashable key")

// refKey addresses an identity key without holding it.
// The type is part of the key so &s and &s.firstField stay distinct.
type refKey struct {
	addr uintptr
	typ  reflect.Type
}

// stringerKey is the fallback for non-comparable keys implementing fmt.Stringer.
type stringerKey struct {
	typ reflect.Type
	str string
}

type keyKind int

const (
	strongKey keyKind = iota
	// identityKey may be held weakly when ptr is a heap object.
	identityKey
)

type classified struct {
	kind   keyKind
	strong any
	ref    refKey
	ptr    unsafe.Pointer
	// pin keeps a key reachable while a strong edge addresses it by ref.
	pin any
}

// classify decides how a single key element is stored.
//
//   - non-nil pointers and maps are identity keys, held weakly when heap
//     allocated;
//   - functions are identity keys on their closure object, held strongly;
//   - comparable values use Go equality, so channels match by identity;
//   - non-comparable fmt.Stringers fall back to their string form;
//   - everything else, slices included, panics with ErrUnhashableKey.
func classify(k any) classified {
	if k == nil {
		return classified{kind: strongKey, strong: nil}
	}
	v := reflect.ValueOf(k)
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			break
		}
		p := v.UnsafePointer()
		return classified{
			kind:   identityKey,
			strong: k,
			ref:    refKey{addr: uintptr(p), typ: v.Type()},
			ptr:    p,
		}
	case reflect.Map:
		if v.IsNil() {
			return classified{kind: strongKey, strong: refKey{typ: v.Type()}}
		}
		p := v.UnsafePointer()
		ref := refKey{addr: uintptr(p), typ: v.Type()}
		return classified{kind: identityKey, strong: ref, ref: ref, ptr: p, pin: k}
	case reflect.Func:
		// the interface data word of a func is its closure object, so two
		// closures over the same code stay apart
		p := (*[2]unsafe.Pointer)(unsafe.Pointer(&k))[1]
		ref := refKey{addr: uintptr(p), typ: v.Type()}
		if p == nil {
			return classified{kind: strongKey, strong: ref}
		}
		return classified{kind: strongKey, strong: ref, pin: k}
	}
	if v.Comparable() {
		return classified{kind: strongKey, strong: k}
	}
	if stringer, ok := k.(fmt.Stringer); ok {
		return classified{
			kind:   strongKey,
			strong: stringerKey{typ: v.Type(), str: stringer.String()},
		}
	}
	panic(fmt.Errorf("%w: %T is neither comparable nor a fmt.Stringer", ErrUnhashableKey, k))
}
