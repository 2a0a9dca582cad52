package value_test

import (
	"testing"

	"github.com/jarrettbillingsley/croc/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringInterningIdentity(t *testing.T) {
	vm := value.NewVM()
	a := value.NewString(vm, "hel"+"lo")
	b := value.NewString(vm, "hello")
	assert.True(t, a == b, "equal byte sequences must intern to the same pointer")
}

func TestTableNullRemoves(t *testing.T) {
	tbl := value.NewTable()
	key := value.Int(1)
	tbl.Set(key, value.Int(42))
	require.True(t, tbl.Has(key))

	tbl.Set(key, value.Null())
	assert.False(t, tbl.Has(key))
}

func TestArrayResizeFillsNull(t *testing.T) {
	arr := value.NewArray(2)
	arr.Set(0, value.Int(1))
	arr.Resize(4)
	assert.Equal(t, 4, arr.Len())
	assert.True(t, arr.Get(3).IsNull())
}

func TestClassFreezeAssignsFieldSlots(t *testing.T) {
	vm := value.NewVM()
	base := value.NewClass(value.NewString(vm, "Base"), nil)
	require.NoError(t, base.AddField("x", value.Int(0), false))
	base.Freeze()

	derived := value.NewClass(value.NewString(vm, "Derived"), base)
	require.NoError(t, derived.AddField("y", value.Int(0), false))
	derived.Freeze()

	inst := value.NewInstance(derived)
	v, ok := inst.GetField("x")
	require.True(t, ok)
	assert.True(t, v.IsNull() == false || v.AsInt() == 0)

	require.True(t, inst.SetField("y", value.Int(7)))
	v, ok = inst.GetField("y")
	require.True(t, ok)
	assert.Equal(t, int64(7), v.AsInt())
}

func TestUpvalOpenCloseSemantics(t *testing.T) {
	vm := value.NewVM()
	th := value.NewThread(vm, nil)
	th.Stack = []value.Value{value.Int(1), value.Int(2), value.Int(3)}

	up := th.OpenUpvalFor(1)
	assert.Equal(t, int64(2), up.Get().AsInt())

	th.Stack[1] = value.Int(99)
	assert.Equal(t, int64(99), up.Get().AsInt())

	th.CloseUpvalsFrom(0)
	assert.True(t, up.Closed)
	th.Stack[1] = value.Int(0)
	assert.Equal(t, int64(99), up.Get().AsInt())
}

func TestWeakrefClearsOnRelease(t *testing.T) {
	vm := value.NewVM()
	target := &value.Array{}
	w := value.NewWeakref(vm, target)
	wrap := func(p interface{}) value.Value { return value.ArrayVal(p.(*value.Array)) }
	assert.False(t, w.Get(wrap).IsNull())

	vm.ReleaseWeakTarget(target)
	assert.True(t, w.Get(wrap).IsNull())
}
