// This file is part of NeoCD.
//
// NeoCD is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// NeoCD is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with NeoCD.  If not, see <https://www.gnu.org/licenses/>.

package logger_test

import (
	"strings"
	"testing"

	"neocd/logger"

	"github.com/stretchr/testify/require"
)

func TestCentralLogger(t *testing.T) {
	var w strings.Builder
	logger.Write(&w)
	require.Equal(t, "", w.String())

	logger.Log("test", "this is a test")
	w.Reset()
	logger.Write(&w)
	require.Equal(t, "test: this is a test\n", w.String())
}

func TestLoggerRingEviction(t *testing.T) {
	l := logger.NewLogger(3)
	l.Log("a", "1")
	l.Log("b", "2")
	l.Log("c", "3")
	l.Log("d", "4")

	var w strings.Builder
	l.Write(&w)
	require.Equal(t, "b: 2\nc: 3\nd: 4\n", w.String())
}

func TestLoggerTail(t *testing.T) {
	l := logger.NewLogger(10)
	l.Log("a", "1")
	l.Log("b", "2")
	l.Log("c", "3")

	var w strings.Builder
	l.Tail(2, &w)
	require.Equal(t, "b: 2\nc: 3\n", w.String())
}
