package board

import (
	"fmt"
	"time"

	"timertable/internal/model"
	"timertable/internal/phase"
)

// weekdayNames is indexed by model.DayOfWeek.
var weekdayNames = [7]string{"월요일", "화요일", "수요일", "목요일", "금요일", "토요일", "일요일"}

// WeekdayName returns the Korean name of a Monday-first weekday index.
func WeekdayName(weekday int) string {
	if weekday < 0 || weekday >= len(weekdayNames) {
		return ""
	}
	return weekdayNames[weekday]
}

// Clock formats now as "{요일} {오전|오후} {h}시 {mm}분 {ss}초" on a 12-hour
// dial where midnight and noon read 12.
func Clock(now time.Time) string {
	meridiem := "오전"
	if now.Hour() >= 12 {
		meridiem = "오후"
	}
	h := now.Hour() % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%s %s %d시 %02d분 %02d초",
		WeekdayName(model.DayOfWeek(now)), meridiem, h, now.Minute(), now.Second())
}

// PhaseLine describes p in one sentence. Unknown yields "".
func PhaseLine(p phase.Phase) string {
	switch v := p.(type) {
	case phase.Weekend:
		return "주말입니다"
	case phase.BeforeSchool:
		return "오늘 수업을 위해 준비할 시간입니다"
	case phase.AfterSchool:
		return "오늘 수업이 끝났습니다"
	case phase.InLecture:
		return v.Lecture.Subject + " 수업을 듣는 중입니다"
	case phase.FreeTime:
		next := "없음"
		if l, ok := v.NextLecture(); ok {
			next = l.Subject
		}
		return fmt.Sprintf("쉬는 시간입니다 (다음 교시 %s)", next)
	default:
		return ""
	}
}

// Status is the two-line headline: the clock, then the phase line.
func Status(now time.Time, p phase.Phase) string {
	return "지금은 " + Clock(now) + "로\n" + PhaseLine(p)
}

// ProgressText renders a countdown as
// "{MM}분 {SS}초 중 {MM}분 {SS}초 남음 ({p}% 완료)": total first, then
// remaining.
func ProgressText(pr phase.Progress) string {
	total := int(pr.Total / time.Second)
	left := int(pr.Remaining / time.Second)
	return fmt.Sprintf("%02d분 %02d초 중 %02d분 %02d초 남음 (%.1f%% 완료)",
		total/60, total%60, left/60, left%60, pr.Fraction()*100)
}
