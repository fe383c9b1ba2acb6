// Package domain defines the core business entities of the task manager
// and the validation rules they must satisfy. Entities are plain structs;
// persistence concerns live in the store layer.
package domain
