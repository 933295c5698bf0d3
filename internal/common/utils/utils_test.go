package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("hello@oceanwhisper.com"))
	assert.True(t, ValidateEmail("john.doe+1@mail.co.za"))
	assert.False(t, ValidateEmail("hello@"))
	assert.False(t, ValidateEmail("not-an-email"))
}

func TestValidatePhone(t *testing.T) {
	assert.True(t, ValidatePhone("+27 82 000 0000"))
	assert.True(t, ValidatePhone("0820000000"))
	assert.False(t, ValidatePhone("+27-82"))
	assert.False(t, ValidatePhone("phone"))
}

func TestValidateHexColorAndClock(t *testing.T) {
	assert.True(t, ValidateHexColor("#3B82F6"))
	assert.False(t, ValidateHexColor("3B82F6"))
	assert.False(t, ValidateHexColor("#3B82F"))

	assert.True(t, ValidateClock("14:00"))
	assert.True(t, ValidateClock("23:59"))
	assert.False(t, ValidateClock("24:00"))
	assert.False(t, ValidateClock("9:00"))
}

func TestStripSpaces(t *testing.T) {
	assert.Equal(t, "+27821112222", StripSpaces(" +27 82 111\t2222 "))
	assert.Equal(t, "", StripSpaces("   "))
}

func TestPtrDeref(t *testing.T) {
	p := Ptr(42)
	assert.Equal(t, 42, *p)
	assert.Equal(t, 42, Deref(p))

	var nilStr *string
	assert.Equal(t, "", Deref(nilStr))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"Bookings", "Calendar"}, "Calendar"))
	assert.False(t, Contains([]int{1, 2}, 3))
}

func TestPagination(t *testing.T) {
	p := Pagination{Page: 0, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)

	p = Pagination{Page: 3, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 20, p.PageSize)
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, 20, p.GetLimit())
}
