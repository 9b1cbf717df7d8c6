package ptr

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type pointerSuite struct {
	suite.Suite
}

func (s *pointerSuite) TestPointer() {
	s.Equal("0xA", *String("0xA"))
	s.Equal(uint64(100), *Uint64(100))
	s.Equal(true, *Bool(true))
}

func (s *pointerSuite) TestNonEmptyString() {
	s.Nil(NonEmptyString(""))
	s.Equal("1000000", *NonEmptyString("1000000"))
}

func TestPointerSuite(t *testing.T) {
	suite.Run(t, new(pointerSuite))
}
