package domain

import "math"

// Epsilon точность сравнения чисел с плавающей точкой
const Epsilon = 1e-9

// Infinity неограниченная пропускная способность (в JSON кодируется как null)
var Infinity = math.Inf(1)

// NegativeInfinity отрицательная бесконечность
var NegativeInfinity = math.Inf(-1)

const (
	// VirtualNodeThreshold граница виртуальных узлов: ID < threshold — виртуальный
	VirtualNodeThreshold int64 = 0
	// SuperSourceID ID суперисточника
	SuperSourceID int64 = -1
	// SuperSinkID ID суперстока
	SuperSinkID int64 = -2
)

// Пороги утилизации для определения узких мест
const (
	CriticalUtilizationThreshold = 0.95
	HighUtilizationThreshold     = 0.85
	MediumUtilizationThreshold   = 0.70
)

// IsVirtualNode проверяет, является ли узел виртуальным
func IsVirtualNode(nodeID int64) bool {
	return nodeID < VirtualNodeThreshold
}

// IsUnbounded проверяет, является ли значение неограниченным
func IsUnbounded(v float64) bool {
	return math.IsInf(v, 1)
}

// FloatEquals сравнивает два float64 с учётом Epsilon
func FloatEquals(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloatLess проверяет a < b с учётом Epsilon
func FloatLess(a, b float64) bool {
	return b-a > Epsilon
}

// FloatGreater проверяет a > b с учётом Epsilon
func FloatGreater(a, b float64) bool {
	return a-b > Epsilon
}

// IsZero проверяет, является ли значение нулём с учётом Epsilon
func IsZero(v float64) bool {
	return math.Abs(v) < Epsilon
}

// IsPositive проверяет, является ли значение положительным с учётом Epsilon
func IsPositive(v float64) bool {
	return v > Epsilon
}

// Min возвращает минимум из двух float64
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max возвращает максимум из двух float64
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
