package xmile

import "math"

// angleFromPoints solves for a connector's arc angle from its three
// recorded points: the source element's position, the sketch's arc
// control point, and the destination element's position (spec.md §4.5
// "angle attribute computed from a three-point arc solution"). Ported
// from original_source's XMUtil.cpp AngleFromPoints, which finds the
// circle through all three points and returns the tangent direction at
// start that bends toward the control point; a zero control point (a
// straight connector) short-circuits to the direct start->end bearing.
func angleFromPoints(startX, startY, pointX, pointY, endX, endY float64) float64 {
	var thetax float64
	switch {
	case endX > startX:
		thetax = -math.Atan((endY-startY)/(endX-startX)) * 180 / math.Pi
	case endX < startX:
		thetax = 180 - math.Atan((startY-endY)/(startX-endX))*180/math.Pi
	case endY > startY:
		thetax = 270
	default:
		thetax = 90
	}
	if pointX == 0 && pointY == 0 {
		return thetax
	}

	line1x := (startX + endX) / 2
	line1y := (startY + endY) / 2
	var slope1x, slope1y float64
	switch {
	case startX == endX:
		slope1x, slope1y = 1, 0
	case startY == endY:
		slope1x, slope1y = 0, 1
	default:
		slope1x = endY - startY
		slope1y = startX - endX
	}

	line2x := (pointX + endX) / 2
	line2y := (pointY + endY) / 2
	var slope2x, slope2y float64
	switch {
	case pointX == endX:
		slope2x, slope2y = 1, 0
	case pointY == endY:
		slope2x, slope2y = 0, 1
	default:
		slope2x = endY - pointY
		slope2y = pointX - endX
	}

	var delta1, delta2 float64
	switch {
	case slope1y == 0:
		if slope2y == 0 || slope1x == 0 {
			return thetax
		}
		delta2 = (line1y - line2y) / slope2y
		delta1 = (line2x + delta2*slope2x - line1x) / slope1x
	case slope1x == 0:
		if slope2x == 0 {
			return thetax
		}
		delta2 = (line1x - line2x) / slope2x
		delta1 = (line2y + delta2*slope2y - line1y) / slope1y
	case slope2y == 0:
		if slope2x == 0 {
			return thetax
		}
		delta1 = (line2y - line1y) / slope1y
		delta2 = (line1x + delta1*slope1x - line2x) / slope2x
	default:
		if math.Abs(slope2x-slope1x*slope2y/slope1y) < 1e-8 {
			return thetax
		}
		delta2 = (line1x + (line2y-line1y)/slope1y*slope1x - line2x) / (slope2x - slope1x*slope2y/slope1y)
		delta1 = (line2y + delta2*slope2y - line1y) / slope1y
	}

	centerX := line1x + delta1*slope1x
	centerY := line1y + delta1*slope1y

	switch {
	case math.Abs(centerY-startY) < 1e-6:
		if pointY > startY {
			return 90
		}
		return 270
	case math.Abs(centerX-startX) < 1e-6:
		if pointX > startX {
			return 0
		}
		return 180
	}

	thetax = math.Atan2(-(startY-centerY), startX-centerX) * 180 / math.Pi

	direct := math.Atan2(-(pointY-startY), pointX-startX) * 180 / math.Pi
	diff1 := direct - (thetax - 90)
	for diff1 < 0 {
		diff1 += 360
	}
	for diff1 > 180 {
		diff1 -= 360
	}
	diff2 := direct - (thetax + 90)
	for diff2 < 0 {
		diff2 += 360
	}
	for diff2 > 180 {
		diff2 -= 360
	}
	if math.Abs(diff1) < math.Abs(diff2) {
		thetax -= 90
	} else {
		thetax += 90
	}
	return thetax
}
