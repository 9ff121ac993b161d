package services

// Services defined in this package:
// - AuthService: administrator registration, login, logout and token checks
// - AdminService: administrator account management
// - StudentService: student records and their photos
