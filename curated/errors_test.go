// This file is part of cpuexec.
//
// cpuexec is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpuexec is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpuexec.  If not, see <https://www.gnu.org/licenses/>.

package curated_test

import (
	"errors"
	"io"
	"testing"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/test"
)

const testError = "test error: %s"
const testErrorB = "test error B: %s"

func TestDuplicateErrors(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.ExpectEquality(t, e.Error(), "test error: foo")

	// packing errors of the same type next to each other causes
	// one of them to be dropped
	f := curated.Errorf(testError, e)
	test.ExpectEquality(t, f.Error(), "test error: foo")
}

func TestIs(t *testing.T) {
	e := curated.Errorf(testError, "foo")
	test.ExpectSuccess(t, curated.Is(e, testError))
	test.ExpectSuccess(t, curated.Has(e, testError))
	test.ExpectFailure(t, curated.Is(e, testErrorB))

	// Has() should fail because we haven't included testErrorB anywhere in the chain
	test.ExpectFailure(t, curated.Has(e, testErrorB))

	f := curated.Errorf(testErrorB, e)
	test.ExpectFailure(t, curated.Is(f, testError))
	test.ExpectSuccess(t, curated.Is(f, testErrorB))
	test.ExpectSuccess(t, curated.Has(f, testError))
	test.ExpectSuccess(t, curated.Has(f, testErrorB))
	test.ExpectSuccess(t, curated.IsAny(f))

	test.ExpectFailure(t, curated.IsAny(errors.New("plain error")))
	test.ExpectFailure(t, curated.IsAny(nil))
}

func TestUnwrap(t *testing.T) {
	e := curated.Errorf("snapshot: %v", io.ErrUnexpectedEOF)
	test.ExpectSuccess(t, errors.Is(e, io.ErrUnexpectedEOF))
	test.ExpectFailure(t, errors.Is(e, io.EOF))

	e = curated.Errorf("snapshot: %v", curated.Errorf("snapshot: %v", io.EOF))
	test.ExpectEquality(t, e.Error(), "snapshot: EOF")
	test.ExpectSuccess(t, errors.Is(e, io.EOF))
}
