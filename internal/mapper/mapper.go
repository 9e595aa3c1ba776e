package mapper

import (
	"math"
	"time"

	"github.com/straye-as/attendance-api/internal/domain"
)

// ToStudentDTO converts Student to StudentDTO
func ToStudentDTO(student *domain.Student, loc *time.Location) domain.StudentDTO {
	return domain.StudentDTO{
		ID:         student.ID,
		Name:       student.Name,
		Department: student.Department,
		DateAdded:  student.DateAdded.In(loc),
	}
}

// ToStudentDTOs converts a roster slice
func ToStudentDTOs(students []domain.Student, loc *time.Location) []domain.StudentDTO {
	dtos := make([]domain.StudentDTO, len(students))
	for i := range students {
		dtos[i] = ToStudentDTO(&students[i], loc)
	}
	return dtos
}

// ToClassDTO converts Class to ClassDTO
func ToClassDTO(class *domain.Class, loc *time.Location) domain.ClassDTO {
	return domain.ClassDTO{
		ID:         class.ID,
		Name:       class.Name,
		Department: class.Department,
		CreatedAt:  class.CreatedAt.In(loc),
	}
}

func ToClassDTOs(classes []domain.Class, loc *time.Location) []domain.ClassDTO {
	dtos := make([]domain.ClassDTO, len(classes))
	for i := range classes {
		dtos[i] = ToClassDTO(&classes[i], loc)
	}
	return dtos
}

// ToAttendanceRecordDTO converts AttendanceRecord to AttendanceRecordDTO.
// The location is only included when both coordinates are present.
func ToAttendanceRecordDTO(record *domain.AttendanceRecord, loc *time.Location) domain.AttendanceRecordDTO {
	dto := domain.AttendanceRecordDTO{
		ID:          record.ID,
		StudentID:   record.StudentID,
		StudentName: record.StudentName,
		Department:  record.Department,
		ClassName:   record.ClassName,
		Date:        record.Day,
		Timestamp:   record.MarkedAt.In(loc),
	}
	if record.HasLocation() {
		dto.Location = &domain.LocationDTO{
			Latitude:  *record.Latitude,
			Longitude: *record.Longitude,
			Address:   record.Address,
		}
	}
	return dto
}

func ToAttendanceRecordDTOs(records []domain.AttendanceRecord, loc *time.Location) []domain.AttendanceRecordDTO {
	dtos := make([]domain.AttendanceRecordDTO, len(records))
	for i := range records {
		dtos[i] = ToAttendanceRecordDTO(&records[i], loc)
	}
	return dtos
}

// ToDailyCodeDTO converts DailyCode to DailyCodeDTO, evaluating expiry at now
func ToDailyCodeDTO(code *domain.DailyCode, now time.Time, loc *time.Location) domain.DailyCodeDTO {
	return domain.DailyCodeDTO{
		Code:      code.Code,
		Date:      code.Day,
		ExpiresAt: code.ExpiresAt.In(loc),
		CreatedAt: code.CreatedAt.In(loc),
		Active:    code.IsActive(now),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification, loc *time.Location) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:        notification.ID,
		Message:   notification.Message,
		CreatedAt: notification.CreatedAt.In(loc),
	}
}

// ToUserDTO converts the user remembered by a session to UserDTO
func ToUserDTO(session *domain.Session) domain.UserDTO {
	return domain.UserDTO{
		Type:       session.UserType,
		ID:         session.UserID,
		Name:       session.UserName,
		Department: session.Department,
	}
}

// Percentage returns part/total*100 rounded to one decimal, or 0 when total is 0
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(part)*1000/float64(total)) / 10
}
