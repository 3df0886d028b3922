// Package hcl provides the concrete HCL implementation for the configuration
// loading and data conversion interfaces defined in the `config` package.
// It is responsible for file discovery and parsing, HCL-to-model
// translation, and CTY-to-Go binding of profile blocks.
//
// A configuration file may contain these blocks:
//
//	manipulator "arm" {
//	  joint "joint_1" {
//	    max_velocity     = 2.0
//	    max_acceleration = pi
//	  }
//	}
//
//	profile "TOTG" "SLOW" {
//	  max_velocity_scaling = 0.5
//	}
//
//	remap "composite" "TOTG" {
//	  RASTER = "SLOW"
//	}
//
//	pipeline "freespace" {
//	  tasks = ["check_input", "TOTG"]
//	}
//
//	raster_pipeline "raster" {
//	  freespace  = "freespace"
//	  transition = "freespace"
//	  raster     = "freespace"
//	}
//
// Expressions can use the constant pi and the functions min, max, abs,
// floor and ceil.
package hcl
