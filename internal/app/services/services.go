// Services defined in this package:
// - AuthService: login, session validation and logout
// - DegreeTrackerService: program, course and student record resolution plus grade edits
package services
