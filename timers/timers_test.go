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

package timers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"neocd/clocks"
	"neocd/savestate"
)

func TestAdvanceTimeIsMonotonic(t *testing.T) {
	var tm Timer
	tm.Arm(100)
	tm.AdvanceTime(30)
	require.Equal(t, int32(70), tm.Delay())
	require.True(t, tm.IsActive())
}

func TestCallbackFiresExactlyOnceAndStops(t *testing.T) {
	var tm Timer
	fired := 0
	tm.SetCallback(func(*Timer) { fired++ })
	tm.Arm(50)

	tm.AdvanceTime(50)
	require.Equal(t, 1, fired)
	require.Equal(t, Stopped, tm.State())

	// Further advances on a stopped timer never re-fire.
	tm.AdvanceTime(50)
	require.Equal(t, 1, fired)
}

func TestCallbackSeesNegativeResidualDelay(t *testing.T) {
	var tm Timer
	var residual int32
	tm.SetCallback(func(t *Timer) { residual = t.Delay() })
	tm.Arm(50)
	tm.AdvanceTime(60)
	require.Equal(t, int32(-10), residual)
}

func TestRearmWithinCallbackKeepsTimerRunning(t *testing.T) {
	var tm Timer
	fired := 0
	tm.SetCallback(func(t *Timer) {
		fired++
		if fired < 3 {
			t.ArmRelative(25)
		}
	})
	tm.Arm(25)

	// 75 cycles in steps of 25: the self-re-arming callback fires on
	// each step.
	for i := 0; i < 3; i++ {
		tm.AdvanceTime(25)
	}
	require.Equal(t, 3, fired)
	require.Equal(t, Stopped, tm.State())
}

func TestArmRelativeAccumulatesResidual(t *testing.T) {
	var tm Timer
	tm.Arm(10)
	tm.SetCallback(func(*Timer) {})
	tm.AdvanceTime(15) // fires, delay now -5

	// ArmRelative folds the -5 residual in so the period doesn't drift.
	tm.ArmRelative(25)
	require.Equal(t, int32(20), tm.Delay())
	require.True(t, tm.IsActive())
}

func TestTimeSliceReturnsSmallestActiveDelayBoundedByFrame(t *testing.T) {
	w := NewWheel()
	require.Equal(t, int32(clocks.CyclesPerFrame), w.TimeSlice())

	w.Timer(Vbl).Arm(500)
	w.Timer(Hbl).Arm(200)
	w.Timer(Watchdog).SetDelay(100) // not active, must not count
	require.Equal(t, int32(200), w.TimeSlice())
}

func TestWheelResetArmsFrameTimers(t *testing.T) {
	w := NewWheel()
	w.Reset(false)

	require.True(t, w.Timer(Drawline).IsActive())
	require.True(t, w.Timer(Vbl).IsActive())
	require.True(t, w.Timer(VblReload).IsActive())
	require.True(t, w.Timer(Cdrom64Hz).IsActive())
	require.True(t, w.Timer(Cdrom75Hz).IsActive())
	require.False(t, w.Timer(Watchdog).IsActive())
	require.False(t, w.Timer(Hbl).IsActive())
	require.False(t, w.Timer(AudioCommand).IsActive())
	require.Equal(t, Cdrom75HzDelay, w.Timer(Cdrom75Hz).Delay())
}

func TestWheelResetHalvesCdrom75HzForCDZ(t *testing.T) {
	w := NewWheel()
	w.Reset(true)
	require.Equal(t, Cdrom75HzDelay/2, w.Timer(Cdrom75Hz).Delay())
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	w := NewWheel()
	w.Reset(false)
	w.Timer(Hbl).Arm(1234)
	w.Timer(Ym2610A).SetUserData(7)

	sw := savestate.NewWriter()
	w.Save(sw)

	restored := NewWheel()
	require.NoError(t, restored.Restore(savestate.NewReader(savestate.Bytes(sw))))

	for n := Name(0); n < count; n++ {
		require.Equal(t, w.Timer(n).State(), restored.Timer(n).State(), "timer %d state", n)
		require.Equal(t, w.Timer(n).Delay(), restored.Timer(n).Delay(), "timer %d delay", n)
		require.Equal(t, w.Timer(n).UserData(), restored.Timer(n).UserData(), "timer %d user data", n)
	}
}
