// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package filter

// Applies a 3x3 median filter to a single channel plane of the given width,
// storing results in output. The outermost rows and columns are copied
// unchanged. Used by the guaranteed-safe denoising fallback path.
func medianFilter3x3(output, data []float32, width int) {
	height:=len(data)/width
	if height<3 || width<3 {
		copy(output, data)
		return
	}
	copy(output[:width], data[:width])                     // copy first row
	copy(output[(height-1)*width:], data[(height-1)*width:])  // copy last row

	gathered:=make([]float32, 9)
	for y:=1; y<height-1; y++ {
		row:=y*width
		output[row]=data[row]                  // copy first column
		output[row+width-1]=data[row+width-1]  // copy last column
		for x:=1; x<width-1; x++ {
			i:=row+x
			gathered[0]=data[i-width-1]
			gathered[1]=data[i-width  ]
			gathered[2]=data[i-width+1]
			gathered[3]=data[i      -1]
			gathered[4]=data[i        ]
			gathered[5]=data[i      +1]
			gathered[6]=data[i+width-1]
			gathered[7]=data[i+width  ]
			gathered[8]=data[i+width+1]
			output[i]=medianFloat32Slice9(gathered)
		}
	}
}

// Calculates the median of a float32 slice of length nine.
// Modifies the elements in place. Array must not contain IEEE NaN.
// From https://stackoverflow.com/questions/45453537/optimal-9-element-sorting-network-that-reduces-to-an-optimal-median-of-9-network
// See also http://ndevilla.free.fr/median/median/src/optmed.c for other sizes
func medianFloat32Slice9(a []float32) float32 {
	if a[0]>a[1] { a[0], a[1] = a[1], a[0]}  // swap(a,0,1)
	if a[3]>a[4] { a[3], a[4] = a[4], a[3]}  // swap(a,3,4)
	if a[6]>a[7] { a[6], a[7] = a[7], a[6]}  // swap(a,6,7)
	if a[1]>a[2] { a[1], a[2] = a[2], a[1]}  // swap(a,1,2)
	if a[4]>a[5] { a[4], a[5] = a[5], a[4]}  // swap(a,4,5)
	if a[7]>a[8] { a[7], a[8] = a[8], a[7]}  // swap(a,7,8)
	if a[0]>a[1] { a[0], a[1] = a[1], a[0]}  // swap(a,0,1)
	if a[3]>a[4] { a[3], a[4] = a[4], a[3]}  // swap(a,3,4)
	if a[6]>a[7] { a[6], a[7] = a[7], a[6]}  // swap(a,6,7)
	if a[0]>a[3] { a[3]       = a[0]      }  // max (a,0,3)
	if a[3]>a[6] { a[6]       = a[3]      }  // max (a,3,6)
	if a[1]>a[4] { a[1], a[4] = a[4], a[1]}  // swap(a,1,4)
	if a[4]>a[7] { a[4]       = a[7]      }  // min (a,4,7)
	if a[1]>a[4] { a[4]       = a[1]      }  // max (a,1,4)
	if a[5]>a[8] { a[5]       = a[8]      }  // min (a,5,8)
	if a[2]>a[5] { a[2]       = a[5]      }  // min (a,2,5)
	if a[2]>a[4] { a[2], a[4] = a[4], a[2]}  // swap(a,2,4)
	if a[4]>a[6] { a[4]       = a[6]      }  // min (a,4,6)
	if a[2]>a[4] { a[4]       = a[2]      }  // max (a,2,4)
	return a[4]
}
