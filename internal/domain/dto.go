package domain

import "time"

// ============================================================================
// Requests
// ============================================================================

// CreateStudentRequest adds a student to the roster
type CreateStudentRequest struct {
	Name       string     `json:"name" validate:"required,max=100"`
	Department Department `json:"department" validate:"required,department"`
}

// CreateClassRequest adds a class to a department
type CreateClassRequest struct {
	Name       string     `json:"name" validate:"required,max=100"`
	Department Department `json:"department" validate:"required,department"`
}

// LocationDTO is an optional position attached to an attendance mark
type LocationDTO struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Address   string  `json:"address,omitempty" validate:"max=255"`
}

// MarkAttendanceRequest marks the current student present for today
type MarkAttendanceRequest struct {
	ClassName string       `json:"className,omitempty" validate:"omitempty,max=100"`
	Location  *LocationDTO `json:"location,omitempty" validate:"omitempty"`
}

// AdminLoginRequest logs in the admin
type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// StudentLoginRequest logs in a student with the roster triple and today's code
type StudentLoginRequest struct {
	StudentID  string     `json:"studentId" validate:"required,max=10"`
	Name       string     `json:"name" validate:"required,max=100"`
	Department Department `json:"department" validate:"required,department"`
	DailyCode  string     `json:"dailyCode" validate:"required,max=32"`
}

// ============================================================================
// Responses
// ============================================================================

type StudentDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
	DateAdded  time.Time  `json:"dateAdded"`
}

type ClassDTO struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Department Department `json:"department"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type AttendanceRecordDTO struct {
	ID          string       `json:"id"`
	StudentID   string       `json:"studentId"`
	StudentName string       `json:"studentName"`
	Department  Department   `json:"department"`
	ClassName   string       `json:"className,omitempty"`
	Date        string       `json:"date"`
	Timestamp   time.Time    `json:"timestamp"`
	Location    *LocationDTO `json:"location,omitempty"`
}

// TodayStatusDTO tells whether a student already marked attendance today
type TodayStatusDTO struct {
	AlreadyMarked bool                 `json:"alreadyMarked"`
	Record        *AttendanceRecordDTO `json:"record,omitempty"`
}

// WeeklyDayDTO is one day of the seven-day attendance strip
type WeeklyDayDTO struct {
	Date      string     `json:"date"`
	Label     string     `json:"label"`
	Present   bool       `json:"present"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

type DailyCodeDTO struct {
	Code      string    `json:"code"`
	Date      string    `json:"date"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	Active    bool      `json:"active"`
}

type NotificationDTO struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type NotificationListDTO struct {
	Items []NotificationDTO `json:"items"`
	Total int64             `json:"total"`
}

type DepartmentStatsDTO struct {
	Department     Department `json:"department"`
	TotalStudents  int        `json:"totalStudents"`
	PresentToday   int        `json:"presentToday"`
	AttendanceRate float64    `json:"attendanceRate"`
}

// OverviewDTO is the admin dashboard summary for today
type OverviewDTO struct {
	Date          string               `json:"date"`
	TotalStudents int                  `json:"totalStudents"`
	TotalPresent  int                  `json:"totalPresent"`
	TotalAbsent   int                  `json:"totalAbsent"`
	PresentRate   float64              `json:"presentRate"`
	AbsentRate    float64              `json:"absentRate"`
	Departments   []DepartmentStatsDTO `json:"departments"`
}

type MonthlySummaryDTO struct {
	Month       string  `json:"month"`
	DaysPresent int     `json:"daysPresent"`
	DaysInMonth int     `json:"daysInMonth"`
	Rate        float64 `json:"rate"`
}

type WeeklySummaryDTO struct {
	PresentDays int            `json:"presentDays"`
	TotalDays   int            `json:"totalDays"`
	Rate        float64        `json:"rate"`
	Standing    string         `json:"standing"`
	Days        []WeeklyDayDTO `json:"days"`
}

type StudentSummaryDTO struct {
	StudentID string            `json:"studentId"`
	Monthly   MonthlySummaryDTO `json:"monthly"`
	Weekly    WeeklySummaryDTO  `json:"weekly"`
}

// UserDTO is the current user as seen by the client
type UserDTO struct {
	Type       UserType   `json:"type"`
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	Department Department `json:"department,omitempty"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserDTO   `json:"user"`
}
