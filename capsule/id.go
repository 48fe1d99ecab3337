package capsule

import (
	"fmt"
	"reflect"
)

// unitKey is the key of capsules that do not implement Keyed.
type unitKey struct{}

// CapsuleId identifies a capsule instance: the capsule's concrete type paired
// with its key. The type component keeps two capsule types with equal keys out
// of the same map entry. CapsuleId is comparable and is the key of both the
// cached-value map and the node map.
type CapsuleId struct {
	capsuleType reflect.Type
	key         any
}

// Id returns the identity of the given capsule instance.
func Id[T any](c Capsule[T]) CapsuleId {
	id := CapsuleId{capsuleType: reflect.TypeOf(c), key: unitKey{}}
	if k, ok := c.(Keyed); ok {
		id.key = k.CapsuleKey()
	}
	return id
}

func (id CapsuleId) String() string {
	if _, ok := id.key.(unitKey); ok {
		return id.capsuleType.String()
	}
	return fmt.Sprintf("%s[%v]", id.capsuleType, id.key)
}
