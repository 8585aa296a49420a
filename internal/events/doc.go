// Package events provides types and interfaces for decoupling task
// creation from pipeline-job construction.
//
// The service layer emits a TaskRequestEvent after persisting a task;
// a handler in the task package reacts by building the pipeline job and
// submitting it to the runner. Neither side imports the other directly.
package events
